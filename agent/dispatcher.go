package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Dispatcher resolves an action tag to its capability descriptor, invokes the
// handler, and normalizes the outcome. It is the only component allowed to
// reach an external system, and it never lets a failure escape as anything
// other than a failed envelope.
type Dispatcher struct {
	registry *Registry
	log      ExecutionLog
	metrics  *Metrics
}

// NewDispatcher creates a dispatcher. A nil log falls back to NopLog.
func NewDispatcher(registry *Registry, log ExecutionLog, metrics *Metrics) *Dispatcher {
	if log == nil {
		log = NopLog{}
	}
	return &Dispatcher{registry: registry, log: log, metrics: metrics}
}

// Dispatch runs one action to completion. Ordering within the request is
// fixed: the ATTEMPTING log entry precedes the external call, the terminal
// entry precedes the return. Local validation failures (unknown tag, missing
// required parameter, missing approval flag) never touch the external system.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, params ParamBag, actor string) ResultEnvelope {
	d.log.Record(ctx, actor, action, PhaseAttempting, map[string]any{"params": params})

	desc, ok := d.registry.Lookup(action)
	if !ok {
		env := Fail("Unknown action: %s", action)
		d.finish(ctx, actor, action, PhaseFailed, env)
		d.metrics.observe(action, PhaseFailed)
		return env
	}

	if missing := desc.MissingParams(params); len(missing) > 0 {
		env := Fail("Missing required parameter(s) for %s: %s", action, strings.Join(missing, ", "))
		d.finish(ctx, actor, desc.Title, PhaseFailed, env)
		d.metrics.observe(action, PhaseFailed)
		return env
	}

	// Defense in depth: an action flagged for explicit approval is refused
	// here when the bag lacks approved=true, even if a misconfigured
	// registry entry let it through the gate.
	if desc.NeedsApprovedFlag && !params.Bool("approved") {
		env := Fail("%s rejected: user approval required", action)
		d.log.Record(ctx, actor, desc.Title, PhaseRejected, map[string]any{"reason": "approval_missing"})
		d.metrics.observe(action, PhaseRejected)
		return env
	}

	env := d.invoke(ctx, desc, params, actor)

	phase := PhaseSuccess
	if !env.Success {
		phase = PhaseFailed
	}
	d.finish(ctx, actor, desc.Title, phase, env)
	d.metrics.observe(action, phase)
	return env
}

// invoke calls the handler, converting a panic into a failed envelope. A
// single broken Workspace call must not take down the whole pipeline.
func (d *Dispatcher) invoke(ctx context.Context, desc CapabilityDescriptor, params ParamBag, actor string) (env ResultEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("service call panicked", "action", desc.Name, "panic", r)
			env = Fail("%s failed: internal error", desc.Name)
		}
	}()

	env = desc.Handler(ctx, params, actor)
	if env.Message == "" {
		// Envelope invariant: message is always present.
		if env.Success {
			env.Message = fmt.Sprintf("%s completed.", desc.Title)
		} else {
			env.Message = fmt.Sprintf("%s failed.", desc.Name)
		}
	}
	if !env.Success {
		env.Details = nil
	}
	return env
}

func (d *Dispatcher) finish(ctx context.Context, actor, action string, phase Phase, env ResultEnvelope) {
	payload := map[string]any{"message": env.Message}
	if env.Success && env.Details != nil {
		payload["details"] = env.Details
	}
	d.log.Record(ctx, actor, action, phase, payload)
}
