package server

import (
	"sync"

	"github.com/vocalagent/vocalagent/planner"
)

// historyWindow caps the conversation context handed back to the planner.
// Older turns are dropped silently; the planner only needs recent context to
// resolve references like "reschedule it to Friday".
const historyWindow = 12

// historyBook keeps per-account conversation history in memory. History is a
// planning aid, not a record; it does not survive a restart and the durable
// record stays in the execution log.
type historyBook struct {
	mu    sync.Mutex
	turns map[string][]planner.Message
}

func newHistoryBook() *historyBook {
	return &historyBook{turns: make(map[string][]planner.Message)}
}

func (h *historyBook) recent(actor string) []planner.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := h.turns[actor]
	out := make([]planner.Message, len(turns))
	copy(out, turns)
	return out
}

func (h *historyBook) append(actor, utterance, reply string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := append(h.turns[actor],
		planner.UserMessage(utterance),
		planner.AssistantMessage(reply),
	)
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}
	h.turns[actor] = turns
}

func (h *historyBook) clear(actor string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, actor)
}
