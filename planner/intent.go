package planner

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Intent is the coarse pre-classification of an utterance. Commands go
// through the full planning prompt; chat goes straight to small talk,
// skipping a planner round trip.
type Intent string

const (
	IntentCommand Intent = "command"
	IntentChat    Intent = "chat"
)

// llmFallbackThreshold is the heuristic confidence below which the
// classifier asks the model to break the tie.
const llmFallbackThreshold = 0.7

var commandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(send|write|compose|draft|forward|reply)\b.*\b(email|mail|message)\b`),
	regexp.MustCompile(`(?i)\b(email|mail)\b.*\bto\b`),
	regexp.MustCompile(`(?i)\b(schedule|book|set up|create|cancel|delete|move|reschedule)\b.*\b(meeting|event|call|appointment)\b`),
	regexp.MustCompile(`(?i)\b(calendar|meeting|event)s?\b.*\b(today|tomorrow|week|upcoming|next)\b`),
	regexp.MustCompile(`(?i)\binstant meeting\b|\bmeet link\b|\bgoogle meet\b`),
	regexp.MustCompile(`(?i)\b(add|create|complete|finish|delete|remove|update|show|list)\b.*\btasks?\b`),
	regexp.MustCompile(`(?i)\bremind me\b|\bto-?do\b`),
	regexp.MustCompile(`(?i)\b(find|search|look for|open|share|list)\b.*\b(file|folder|document|doc|spreadsheet|sheet|drive)\b`),
	regexp.MustCompile(`(?i)\b(create|make|new)\b.*\b(document|doc|spreadsheet|sheet|note)\b`),
	regexp.MustCompile(`(?i)\b(add|append|write)\b.*\b(row|cell|doc|note)\b`),
	regexp.MustCompile(`(?i)\b(unread|inbox|attachment)\b`),
	regexp.MustCompile(`(?i)\bcontacts?\b|\b(email|phone)( address| number)? (of|for)\b`),
	regexp.MustCompile(`(?i)\b(take|make|save)\b.*\bnote\b`),
}

var chatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(hi|hello|hey|yo|good (morning|afternoon|evening))\b[.!]*$`),
	regexp.MustCompile(`(?i)\bhow are you\b|\bwhat'?s up\b`),
	regexp.MustCompile(`(?i)^(thanks|thank you|thx|cheers)\b`),
	regexp.MustCompile(`(?i)\bwho are you\b|\bwhat can you do\b|\bhelp\b$`),
	regexp.MustCompile(`(?i)^(ok|okay|cool|nice|great|bye|goodbye|see you)\b[.!]*$`),
	regexp.MustCompile(`(?i)\btell me a joke\b`),
}

// Classifier decides whether an utterance is a Workspace command or just
// conversation. The regex pass handles the vast majority of traffic without
// an LLM call; only genuinely ambiguous inputs fall through to the model.
type Classifier struct {
	chat ChatService
}

// NewClassifier creates a classifier. chat may be nil, in which case
// ambiguous inputs default to command so they still reach the planner.
func NewClassifier(chat ChatService) *Classifier {
	return &Classifier{chat: chat}
}

// Classify returns the intent and the confidence of the heuristic pass.
func (c *Classifier) Classify(ctx context.Context, text string) (Intent, float64) {
	intent, confidence := heuristicIntent(text)
	if confidence >= llmFallbackThreshold || c.chat == nil {
		return intent, confidence
	}

	reply, err := c.chat.Chat(ctx, []Message{
		SystemPrompt(`Classify the user's message. Answer with exactly one word: "command" if it asks for an action on email, calendar, files, tasks, notes, or contacts; "chat" otherwise.`),
		UserMessage(text),
	})
	if err != nil {
		slog.Warn("intent fallback llm call failed, assuming command", "error", err)
		return IntentCommand, confidence
	}
	if strings.Contains(strings.ToLower(reply), "chat") {
		return IntentChat, 1
	}
	return IntentCommand, 1
}

// heuristicIntent scores the utterance against both pattern sets. A hit on
// either side is decisive; empty input and pattern-free input are ambiguous,
// leaning command since a wrong "chat" answer silently drops a request while
// a wrong "command" answer only costs a planner round trip.
func heuristicIntent(text string) (Intent, float64) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return IntentChat, 1
	}

	for _, re := range commandPatterns {
		if re.MatchString(trimmed) {
			return IntentCommand, 0.9
		}
	}
	for _, re := range chatPatterns {
		if re.MatchString(trimmed) {
			return IntentChat, 0.9
		}
	}

	// Short pattern-free utterances are usually conversational; longer ones
	// are usually instructions.
	if len(strings.Fields(trimmed)) <= 3 {
		return IntentChat, 0.5
	}
	return IntentCommand, 0.5
}
