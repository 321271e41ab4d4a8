package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Processor is the single entry point from the planner's output to a
// caller-facing response. Per request it walks RECEIVED -> VALIDATED -> one
// of AUTO_EXECUTED, STAGED_FOR_APPROVAL, REJECTED; no state survives the
// request and no state is re-entered.
type Processor struct {
	registry   *Registry
	gate       *Gate
	dispatcher *Dispatcher
	enricher   *TimeEnricher
}

// NewProcessor wires the pipeline together.
func NewProcessor(registry *Registry, gate *Gate, dispatcher *Dispatcher, enricher *TimeEnricher) *Processor {
	return &Processor{registry: registry, gate: gate, dispatcher: dispatcher, enricher: enricher}
}

// Process resolves one planner descriptor into exactly one response.
func (p *Processor) Process(ctx context.Context, d ActionDescriptor, actor string) Response {
	// No action is permitted for an unauthenticated caller; this check
	// precedes every other branch.
	if actor == "" {
		return ErrorResponse("User not logged in")
	}

	if IsControlTag(d.Action) {
		return p.control(d)
	}

	d, resp := p.enrich(d)
	if resp != nil {
		return *resp
	}

	switch p.gate.Classify(d) {
	case NeedsClarification:
		return p.clarify(d)
	case NeedsApproval:
		return p.gate.BuildPreview(ctx, d, actor)
	}

	env := p.dispatcher.Dispatch(ctx, d.Action, d.Params, actor)
	if _, known := p.registry.Lookup(d.Action); !known {
		return ErrorResponse("%s", env.Message)
	}
	return formatResult(d.Action, env)
}

// control resolves a planner control tag into its reply without consulting
// the gate or dispatcher.
func (p *Processor) control(d ActionDescriptor) Response {
	switch d.Action {
	case ActionError:
		return ErrorResponse("%s", paramOr(d.Params, "message", "An error occurred"))
	case ActionAskUser:
		return ResultResponse(paramOr(d.Params, "message", "I need more information. Please provide additional details."))
	default:
		return ResultResponse(paramOr(d.Params, "response", "I'm here to help!"))
	}
}

// Execute is the confirmed-execute entry point. It takes the action+params of
// a previously issued preview (possibly edited by the caller) and dispatches
// directly, attaching the explicit approval marker for actions that demand
// one. Edited params are valid as long as they still satisfy the action's
// required-parameter contract; the dispatcher enforces that.
func (p *Processor) Execute(ctx context.Context, action string, params ParamBag, actor string) Response {
	if actor == "" {
		return ErrorResponse("User not logged in")
	}

	params = params.Clone()
	if desc, ok := p.registry.Lookup(action); ok && desc.NeedsApprovedFlag {
		params["approved"] = true
	}

	env := p.dispatcher.Dispatch(ctx, action, params, actor)
	if !env.Success {
		return ErrorResponse("%s", env.Message)
	}
	return formatResult(action, env)
}

// enrich normalizes relative calendar times before classification so the
// preview already shows resolved values. The descriptor's bag is cloned
// first; enrichment never mutates the planner's original output.
func (p *Processor) enrich(d ActionDescriptor) (ActionDescriptor, *Response) {
	if d.Action != ActionCalendarCreate && d.Action != ActionCalendarUpdate {
		return d, nil
	}
	if d.Action == ActionCalendarUpdate && !d.Params.Has("start_time") {
		return d, nil
	}

	params := d.Params.Clone()
	if err := p.enricher.EnrichCalendarTimes(params); err != nil {
		var missing *MissingTimeError
		if errors.As(err, &missing) {
			r := ResultResponse(fmt.Sprintf("When should I schedule %q? Please give me a date and time.", params.String("summary")))
			return d, &r
		}
		slog.Warn("calendar time enrichment failed", "action", d.Action, "error", err)
		r := ErrorResponse("I couldn't understand the date/time %q. Please rephrase it.", d.Params.String("start_time"))
		return d, &r
	}
	return ActionDescriptor{Action: d.Action, Params: params}, nil
}

func (p *Processor) clarify(d ActionDescriptor) Response {
	desc, ok := p.registry.Lookup(d.Action)
	if !ok {
		return ResultResponse("I need more information. Please provide additional details.")
	}
	missing := desc.MissingParams(d.Params)
	if len(missing) == 0 {
		return ResultResponse("I need more information. Please provide additional details.")
	}
	return ResultResponse(fmt.Sprintf("I need a bit more to %s: please provide %s.",
		strings.ToLower(desc.Title), strings.Join(missing, ", ")))
}

func paramOr(p ParamBag, key, fallback string) string {
	if v := p.String(key); v != "" {
		return v
	}
	return fallback
}
