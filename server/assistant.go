package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vocalagent/vocalagent/agent"
	"github.com/vocalagent/vocalagent/planner"
	"github.com/vocalagent/vocalagent/store"
)

type assistantRequest struct {
	Text string `json:"text"`
}

type executeRequest struct {
	Action string         `json:"action"`
	Params agent.ParamBag `json:"params"`
}

// handleAssistant turns one transcribed utterance into exactly one response:
// a chat reply, an executed result, an approval preview, or an error.
func (s *Server) handleAssistant(c echo.Context) error {
	var req assistantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	ctx := c.Request().Context()
	actor := actorFrom(c)
	history := s.history.recent(actor)

	var resp agent.Response
	if intent, _ := s.classifier.Classify(ctx, text); intent == planner.IntentChat {
		resp = agent.ResultResponse(s.planner.SmallTalk(ctx, text, history))
	} else {
		descriptor := s.planner.Plan(ctx, text, history)
		resp = s.processor.Process(ctx, descriptor, actor)
	}

	s.history.append(actor, text, replySummary(resp))
	return c.JSON(http.StatusOK, resp)
}

// handleExecute is the confirmed-execute entry point: the caller posts back
// the action and params from an earlier approval preview, edits included.
func (s *Server) handleExecute(c echo.Context) error {
	var req executeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(req.Action) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "action is required")
	}

	actor := actorFrom(c)
	resp := s.processor.Execute(c.Request().Context(), strings.ToUpper(strings.TrimSpace(req.Action)), req.Params, actor)
	s.history.append(actor, "[confirmed "+req.Action+"]", replySummary(resp))
	return c.JSON(http.StatusOK, resp)
}

// handleEcho is a connectivity probe for voice front ends; it returns the
// transcription unchanged so the client can verify round-trip latency.
func (s *Server) handleEcho(c echo.Context) error {
	var req assistantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	return c.JSON(http.StatusOK, assistantRequest{Text: req.Text})
}

// handleLogs returns the signed-in account's execution history, newest first.
func (s *Server) handleLogs(c echo.Context) error {
	actor := actorFrom(c)
	find := &store.FindExecutionLog{Actor: &actor}

	if action := strings.TrimSpace(c.QueryParam("action")); action != "" {
		upper := strings.ToUpper(action)
		find.Action = &upper
	}
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	find.Limit = &limit

	entries, err := s.Store.ListExecutionLogs(c.Request().Context(), find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load execution log")
	}
	return c.JSON(http.StatusOK, map[string]any{"logs": entries})
}

// replySummary picks the caller-visible text of a response for the
// conversation history. Previews contribute their message so a later "yes,
// send it" has something to refer to.
func replySummary(resp agent.Response) string {
	if resp.Message != "" {
		return resp.Message
	}
	return resp.Response
}
