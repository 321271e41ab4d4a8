package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/vocalagent/vocalagent/agent"
)

// defaultMaxConcurrent caps in-flight LLM calls across all users.
const defaultMaxConcurrent = 8

// Planner maps utterances to action descriptors. All of its methods are safe
// for concurrent use; a weighted semaphore bounds the in-flight LLM calls so
// a burst of requests cannot exhaust the provider's rate limits.
type Planner struct {
	chat ChatService
	sem  *semaphore.Weighted
}

// NewPlanner creates a planner over the given chat service.
func NewPlanner(chat ChatService, maxConcurrent int64) *Planner {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Planner{chat: chat, sem: semaphore.NewWeighted(maxConcurrent)}
}

// Plan turns one utterance (with optional conversation history) into an
// action descriptor. Planner failures are returned as an ERROR descriptor,
// not a Go error: the pipeline downstream renders every descriptor, broken
// planning included, into a user-facing response.
func (p *Planner) Plan(ctx context.Context, utterance string, history []Message) agent.ActionDescriptor {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return errorDescriptor("The assistant is shutting down. Please try again.")
	}
	defer p.sem.Release(1)

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, SystemPrompt(plannerSystemPrompt))
	messages = append(messages, history...)
	messages = append(messages, UserMessage(utterance))

	raw, err := p.chat.Chat(ctx, messages)
	if err != nil {
		slog.Error("planner llm call failed", "error", err)
		return errorDescriptor("I couldn't reach the language model. Please try again.")
	}

	d, err := parseDescriptor(raw)
	if err != nil {
		slog.Warn("planner produced unparseable output", "error", err, "raw_length", len(raw))
		return errorDescriptor("I couldn't understand that request. Please rephrase it.")
	}
	return d
}

// SmallTalk generates a conversational reply for utterances that need no
// Workspace action.
func (p *Planner) SmallTalk(ctx context.Context, utterance string, history []Message) string {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "I'm here to help!"
	}
	defer p.sem.Release(1)

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, SystemPrompt(smallTalkSystemPrompt))
	messages = append(messages, history...)
	messages = append(messages, UserMessage(utterance))

	reply, err := p.chat.Chat(ctx, messages)
	if err != nil {
		slog.Warn("small talk llm call failed", "error", err)
		return "I'm here to help!"
	}
	return strings.TrimSpace(reply)
}

// DraftEmail writes a subject and body from a natural-language instruction.
// It implements agent.EmailDrafter.
func (p *Planner) DraftEmail(ctx context.Context, instruction, recipientName, senderName string) (agent.EmailDraft, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return agent.EmailDraft{}, err
	}
	defer p.sem.Release(1)

	prompt := fmt.Sprintf("Write an email to %s from %s. Instruction: %s", recipientName, senderName, instruction)
	raw, err := p.chat.Chat(ctx, []Message{
		SystemPrompt(drafterSystemPrompt),
		UserMessage(prompt),
	})
	if err != nil {
		return agent.EmailDraft{}, fmt.Errorf("draft email: %w", err)
	}

	var draft struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &draft); err != nil {
		return agent.EmailDraft{}, fmt.Errorf("draft email: unparseable model output: %w", err)
	}
	if draft.Subject == "" && draft.Body == "" {
		return agent.EmailDraft{}, fmt.Errorf("draft email: model returned empty draft")
	}
	return agent.EmailDraft{Subject: draft.Subject, Body: draft.Body}, nil
}

// parseDescriptor extracts the {"action": ..., "params": ...} object from
// raw model output. Models wrap JSON in code fences or lead with stray text
// often enough that both are tolerated; anything without a recognizable
// object is an error.
func parseDescriptor(raw string) (agent.ActionDescriptor, error) {
	text := stripFences(raw)

	// Take the outermost object if the model added text around it.
	if start := strings.IndexByte(text, '{'); start >= 0 {
		if end := strings.LastIndexByte(text, '}'); end > start {
			text = text[start : end+1]
		}
	}

	var d struct {
		Action string         `json:"action"`
		Params map[string]any `json:"params"`
	}
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return agent.ActionDescriptor{}, fmt.Errorf("decode descriptor: %w", err)
	}
	if d.Action == "" {
		return agent.ActionDescriptor{}, fmt.Errorf("descriptor has no action tag")
	}
	if d.Params == nil {
		d.Params = map[string]any{}
	}
	return agent.ActionDescriptor{
		Action: strings.ToUpper(strings.TrimSpace(d.Action)),
		Params: agent.ParamBag(d.Params),
	}, nil
}

// stripFences removes a leading/trailing markdown code fence, with or
// without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func errorDescriptor(message string) agent.ActionDescriptor {
	return agent.ActionDescriptor{
		Action: agent.ActionError,
		Params: agent.ParamBag{"message": message},
	}
}
