// Package agent implements the plan-to-action execution pipeline. It takes
// the structured intent produced by the planner, validates it against the
// action registry, stages side-effecting actions for user approval, dispatches
// approved actions to the Google Workspace service calls, and normalizes
// every outcome into a uniform envelope.
package agent

import "fmt"

// ResultEnvelope is the uniform return shape of every capability invocation.
// Message is always non-empty; Details is only set on success.
type ResultEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Succeed builds a successful envelope with an optional typed payload.
func Succeed(message string, details any) ResultEnvelope {
	return ResultEnvelope{Success: true, Message: message, Details: details}
}

// Fail builds a failed envelope. Details stays absent on failure.
func Fail(format string, args ...any) ResultEnvelope {
	return ResultEnvelope{Success: false, Message: fmt.Sprintf(format, args...)}
}

// ResponseType tags the caller-facing response shape.
type ResponseType string

const (
	ResponseResult       ResponseType = "RESULT"
	ResponseError        ResponseType = "ERROR"
	ResponseApproval     ResponseType = "APPROVAL"
	ResponseEmailPreview ResponseType = "EMAIL_PREVIEW"
)

// Response is the stable contract consumed by the front end. For APPROVAL and
// EMAIL_PREVIEW responses, Action and Params round-trip losslessly: the caller
// resubmits them unchanged to the confirmed-execute entry point and gets the
// exact side effect the Message described.
type Response struct {
	Type       ResponseType `json:"response_type"`
	Response   string       `json:"response,omitempty"`
	Action     string       `json:"action,omitempty"`
	Message    string       `json:"message,omitempty"`
	Params     ParamBag     `json:"params,omitempty"`
	Candidates []Contact    `json:"candidates,omitempty"`
}

// ErrorResponse builds a terminal ERROR response.
func ErrorResponse(format string, args ...any) Response {
	return Response{Type: ResponseError, Response: fmt.Sprintf(format, args...)}
}

// ResultResponse builds a RESULT response carrying plain text.
func ResultResponse(text string) Response {
	return Response{Type: ResponseResult, Response: text}
}

// ActionDescriptor is the structured intent produced by the planner. It is
// created once per user request and immutable afterwards except for
// server-side enrichment (date normalization) performed before dispatch.
type ActionDescriptor struct {
	Action string   `json:"action"`
	Params ParamBag `json:"params"`
}

// Control tags short-circuit in the processor and never reach the dispatcher.
const (
	ActionSmallTalk = "SMALL_TALK"
	ActionAskUser   = "ASK_USER"
	ActionError     = "ERROR"
)

// IsControlTag reports whether tag is one of the planner's control tags.
func IsControlTag(tag string) bool {
	switch tag {
	case ActionSmallTalk, ActionAskUser, ActionError:
		return true
	}
	return false
}
