package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalagent/vocalagent/agent"
	"github.com/vocalagent/vocalagent/auth"
	"github.com/vocalagent/vocalagent/internal/profile"
	"github.com/vocalagent/vocalagent/planner"
	"github.com/vocalagent/vocalagent/store"
	"github.com/vocalagent/vocalagent/store/db/sqlite"
)

type fakeChat struct {
	reply string
}

func (f *fakeChat) Chat(context.Context, []planner.Message) (string, error) { return f.reply, nil }
func (f *fakeChat) Warmup(context.Context)                                  {}

type fakeCalendar struct {
	agent.CalendarService
}

func (f *fakeCalendar) ListUpcoming(context.Context, string, int64) agent.ResultEnvelope {
	return agent.Succeed("You have 1 upcoming event.", []agent.Event{
		{ID: "ev1", Summary: "Standup", Start: "2026-03-14T10:00:00Z"},
	})
}

type fakeTasks struct {
	agent.TasksService
}

func (f *fakeTasks) Create(_ context.Context, _ string, title, _, _, _ string) agent.ResultEnvelope {
	return agent.Succeed("Task created: "+title, agent.Task{ID: "t1", Title: title})
}

type fakeContacts struct {
	agent.ContactsService
}

func (f *fakeContacts) Directory(context.Context, string, int64) ([]agent.Contact, error) {
	return nil, nil
}

type testServer struct {
	srv   *Server
	http  *httptest.Server
	store *store.Store
}

// newTestServer wires a real pipeline over an in-memory sqlite store, with a
// canned LLM reply and fake Workspace services.
func newTestServer(t *testing.T, plannerReply string) *testServer {
	t.Helper()

	p := &profile.Profile{
		Mode:               "dev",
		Driver:             "sqlite",
		DSN:                filepath.Join(t.TempDir(), "test.db"),
		SessionSecret:      "test-secret",
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		InstanceURL:        "http://localhost:4000",
		Timezone:           "UTC",
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	chat := &fakeChat{reply: plannerReply}
	pl := planner.NewPlanner(chat, 2)

	registry := agent.NewRegistry()
	agent.RegisterCatalog(registry, agent.Services{
		Calendar: &fakeCalendar{},
		Tasks:    &fakeTasks{},
		Contacts: &fakeContacts{},
	})
	resolver := agent.NewRecipientResolver(&fakeContacts{}, st)
	gate := agent.NewGate(registry, resolver, pl)
	reg := prometheus.NewRegistry()
	dispatcher := agent.NewDispatcher(registry, st, agent.NewMetrics(reg))
	enricher := agent.NewTimeEnricher(time.Now, time.UTC)
	processor := agent.NewProcessor(registry, gate, dispatcher, enricher)

	authManager, err := auth.NewManager(p, st)
	require.NoError(t, err)

	srv, err := NewServer(context.Background(), p, st, Dependencies{
		Processor:  processor,
		Planner:    pl,
		Classifier: planner.NewClassifier(chat),
		Auth:       authManager,
		Metrics:    reg,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.e)
	t.Cleanup(ts.Close)
	return &testServer{srv: srv, http: ts, store: st}
}

func (ts *testServer) sessionCookie(email string) *http.Cookie {
	return &http.Cookie{Name: sessionCookieName, Value: ts.srv.sessions.Sign(email)}
}

func (ts *testServer) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.http.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := ts.http.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response) agent.Response {
	t.Helper()
	var out agent.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, "{}")
	resp := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEcho_RoundTripsWithoutSession(t *testing.T) {
	ts := newTestServer(t, "{}")
	resp := ts.do(t, http.MethodPost, "/api/v1/echo", `{"text":"testing one two"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out assistantRequest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "testing one two", out.Text)
}

func TestAssistant_RequiresSession(t *testing.T) {
	ts := newTestServer(t, "{}")
	resp := ts.do(t, http.MethodPost, "/api/v1/assistant", `{"text":"list my events"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAssistant_RejectsForgedSession(t *testing.T) {
	ts := newTestServer(t, "{}")
	forged := &http.Cookie{Name: sessionCookieName, Value: "eve@x.com|9999999999|bogus"}
	resp := ts.do(t, http.MethodPost, "/api/v1/assistant", `{"text":"list my events"}`, forged)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAssistant_ListsCalendarEvents(t *testing.T) {
	ts := newTestServer(t, `{"action":"CALENDAR_LIST","params":{}}`)
	resp := ts.do(t, http.MethodPost, "/api/v1/assistant",
		`{"text":"please list my upcoming calendar events"}`, ts.sessionCookie("user@x.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeResponse(t, resp)
	assert.Equal(t, agent.ResponseResult, out.Type)
	assert.Contains(t, out.Response, "Standup")
}

func TestAssistant_EmptyTextIsBadRequest(t *testing.T) {
	ts := newTestServer(t, "{}")
	resp := ts.do(t, http.MethodPost, "/api/v1/assistant", `{"text":"  "}`, ts.sessionCookie("user@x.com"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecute_RunsConfirmedAction(t *testing.T) {
	ts := newTestServer(t, "{}")
	resp := ts.do(t, http.MethodPost, "/api/v1/assistant/execute",
		`{"action":"tasks_create","params":{"title":"File expenses"}}`, ts.sessionCookie("user@x.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeResponse(t, resp)
	assert.Equal(t, agent.ResponseResult, out.Type)
	assert.Contains(t, out.Response, "File expenses")
}

func TestExecute_WithoutActionIsBadRequest(t *testing.T) {
	ts := newTestServer(t, "{}")
	resp := ts.do(t, http.MethodPost, "/api/v1/assistant/execute", `{"params":{}}`, ts.sessionCookie("user@x.com"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogs_ReturnsOwnEntriesNewestFirst(t *testing.T) {
	ts := newTestServer(t, "{}")
	ctx := context.Background()
	for _, e := range []*store.ExecutionLogEntry{
		{Actor: "user@x.com", Action: "CALENDAR_LIST", Phase: "SUCCESS"},
		{Actor: "other@x.com", Action: "GMAIL_SEND", Phase: "REJECTED"},
	} {
		_, err := ts.store.CreateExecutionLog(ctx, e)
		require.NoError(t, err)
	}

	resp := ts.do(t, http.MethodGet, "/api/v1/logs", "", ts.sessionCookie("user@x.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Logs []*store.ExecutionLogEntry `json:"logs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Logs, 1)
	assert.Equal(t, "CALENDAR_LIST", out.Logs[0].Action)
}

func TestLogs_BadLimitIsBadRequest(t *testing.T) {
	ts := newTestServer(t, "{}")
	resp := ts.do(t, http.MethodGet, "/api/v1/logs?limit=zero", "", ts.sessionCookie("user@x.com"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGoogleCallback_StateMismatch(t *testing.T) {
	ts := newTestServer(t, "{}")
	resp := ts.do(t, http.MethodGet, "/auth/google/callback?state=tampered&code=abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGoogleLogin_RedirectsToConsent(t *testing.T) {
	ts := newTestServer(t, "{}")
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.http.URL + "/auth/google/login")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc := resp.Header.Get("Location")
	assert.Contains(t, loc, "accounts.google.com")
	assert.Contains(t, loc, "state=")
}

func TestLogout_ExpiresSessionCookie(t *testing.T) {
	ts := newTestServer(t, "{}")
	resp := ts.do(t, http.MethodPost, "/auth/google/logout", "", ts.sessionCookie("user@x.com"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestAssistant_RateLimited(t *testing.T) {
	ts := newTestServer(t, "{}")
	cookie := ts.sessionCookie("busy@x.com")

	var throttled bool
	for i := 0; i < 10; i++ {
		resp := ts.do(t, http.MethodPost, "/api/v1/assistant", `{"text":"  "}`, cookie)
		if resp.StatusCode == http.StatusTooManyRequests {
			throttled = true
			break
		}
	}
	assert.True(t, throttled)
}
