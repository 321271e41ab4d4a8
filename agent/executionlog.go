package agent

import "context"

// Phase of one dispatch attempt in the execution log. Within a request, the
// ATTEMPTING record strictly precedes exactly one terminal record.
type Phase string

const (
	PhaseAttempting Phase = "ATTEMPTING"
	PhaseSuccess    Phase = "SUCCESS"
	PhaseFailed     Phase = "FAILED"
	PhaseRejected   Phase = "REJECTED"
)

// ExecutionLog is the append-only audit sink for dispatch attempts. Record is
// fire-and-forget: implementations must swallow their own failures, since a
// lost log line must never fail the request that produced it.
type ExecutionLog interface {
	Record(ctx context.Context, actor, action string, phase Phase, payload map[string]any)
}

// NopLog discards every record. Useful in tests and as a default.
type NopLog struct{}

func (NopLog) Record(context.Context, string, string, Phase, map[string]any) {}
