package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_ExplicitAddressesWin(t *testing.T) {
	contacts := &fakeContacts{rec: newRecorder(), directory: []Contact{
		{Name: "Jan Kowalski", Email: "jan.kowalski@x.com"},
	}}
	r := NewRecipientResolver(contacts, nil)

	res := r.Resolve(context.Background(), "send it to ola.nowak@y.org and jan@x.com", "user@example.com")

	require.True(t, res.Resolved())
	assert.Equal(t, []string{"ola.nowak@y.org", "jan@x.com"}, res.Emails)
	assert.Zero(t, contacts.rec.calls["contacts.directory"], "explicit addresses skip the directory")
}

func TestResolver_ExactNameAutoAccepts(t *testing.T) {
	contacts := &fakeContacts{rec: newRecorder(), directory: []Contact{
		{Name: "Jan Kowalski", Email: "jan.kowalski@x.com"},
		{Name: "Maria Wisniewska", Email: "maria@x.com"},
	}}
	r := NewRecipientResolver(contacts, nil)

	res := r.Resolve(context.Background(), "Jan Kowalski", "user@example.com")

	require.True(t, res.Resolved())
	assert.Equal(t, []string{"jan.kowalski@x.com"}, res.Emails)
}

func TestResolver_HonorificsAndCaseIgnored(t *testing.T) {
	contacts := &fakeContacts{rec: newRecorder(), directory: []Contact{
		{Name: "Jan Kowalski", Email: "jan.kowalski@x.com"},
	}}
	r := NewRecipientResolver(contacts, nil)

	res := r.Resolve(context.Background(), "Dr. JAN KOWALSKI", "user@example.com")

	require.True(t, res.Resolved())
	assert.Equal(t, []string{"jan.kowalski@x.com"}, res.Emails)
}

func TestResolver_MultipleCloseMatchesAsk(t *testing.T) {
	contacts := &fakeContacts{rec: newRecorder(), directory: []Contact{
		{Name: "Jan Kowalski", Email: "jan.kowalski@x.com"},
		{Name: "Jan Nowak", Email: "jan.nowak@x.com"},
		{Name: "Janina Kowalczyk", Email: "janina@x.com"},
		{Name: "Maria Wisniewska", Email: "maria@x.com"},
	}}
	log := &memLog{}
	r := NewRecipientResolver(contacts, log)

	res := r.Resolve(context.Background(), "jan", "user@example.com")

	assert.False(t, res.Resolved())
	assert.True(t, res.NeedsConfirmation)
	assert.Contains(t, res.Prompt, "multiple possible matches")
	assert.Contains(t, res.Prompt, "jan.kowalski@x.com")
	assert.Contains(t, res.Prompt, "jan.nowak@x.com")
	require.NotEmpty(t, res.Candidates)
	assert.LessOrEqual(t, len(res.Candidates), 3)
	require.NotEmpty(t, log.entries)
	assert.Equal(t, PhaseFailed, log.entries[len(log.entries)-1].Phase)
}

func TestResolver_NoMatchPromptsForAddress(t *testing.T) {
	contacts := &fakeContacts{rec: newRecorder(), directory: []Contact{
		{Name: "Maria Wisniewska", Email: "maria@x.com"},
	}}
	r := NewRecipientResolver(contacts, nil)

	res := r.Resolve(context.Background(), "zbigniew", "user@example.com")

	assert.False(t, res.Resolved())
	assert.Contains(t, res.Prompt, "zbigniew")
	assert.Contains(t, res.Prompt, "email address")
}

func TestResolver_DirectoryErrorFallsBackToPrompt(t *testing.T) {
	contacts := &fakeContacts{rec: newRecorder(), dirErr: errors.New("people api unavailable")}
	r := NewRecipientResolver(contacts, nil)

	res := r.Resolve(context.Background(), "jan", "user@example.com")

	assert.False(t, res.Resolved())
	assert.Contains(t, res.Prompt, "couldn't access your contacts")
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Dr. Jan Kowalski", "jan kowalski"},
		{"  MRS   Maria  Wisniewska ", "maria wisniewska"},
		{"jan", "jan"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeName(tt.in), "input %q", tt.in)
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	assert.Equal(t, 1.0, similarity("jan", "jan"))
	assert.Equal(t, 0.0, similarity("", "jan"))
	assert.InDelta(t, 0.75, similarity("jann", "jan"), 0.01)
}

func TestNameSimilarity_FirstNameRanksHighly(t *testing.T) {
	// A first-name query scores the token match, not the whole-name ratio.
	s := nameSimilarity("jan", "jan kowalski")
	assert.Greater(t, s, autoAcceptScore)
	assert.Less(t, s, 1.0, "a token match stays below an exact full-name match")
}
