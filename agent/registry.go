package agent

import (
	"context"
	"fmt"
	"sort"
)

// HandlerFunc invokes one external service call for an action. Handlers must
// resolve every failure into the envelope; the dispatcher additionally guards
// against panics as defense in depth.
type HandlerFunc func(ctx context.Context, params ParamBag, actor string) ResultEnvelope

// CapabilityDescriptor is one registry entry: the parameter contract,
// approval requirement, and handler for a single action tag.
type CapabilityDescriptor struct {
	// Name is the action tag, e.g. "GMAIL_SEND".
	Name string

	// Title is a short human-readable label used in logs and previews,
	// e.g. "Email Sent".
	Title string

	// RequiredParams lists parameter names that must be non-empty before
	// the handler may be invoked.
	RequiredParams []string

	// RequiresApproval is true for any action with an externally visible,
	// hard-to-reverse side effect. Such actions are staged for user
	// approval and never reach the handler from the auto-execute path.
	RequiresApproval bool

	// NeedsApprovedFlag marks actions whose handler must additionally see
	// approved=true in the parameter bag. The dispatcher re-checks this
	// flag independently of RequiresApproval so a misconfigured registry
	// entry cannot make an unapproved send reachable.
	NeedsApprovedFlag bool

	// Handler performs the external call.
	Handler HandlerFunc
}

// DuplicateActionError reports a second registration for an action tag.
// Duplicate registrations are a startup error, never tolerated at runtime.
type DuplicateActionError struct {
	Action string
}

func (e *DuplicateActionError) Error() string {
	return fmt.Sprintf("action %q is already registered", e.Action)
}

// Registry is the single source of truth mapping an action tag to its
// capability descriptor. It is populated once at startup and read-only
// afterwards, so unsynchronized concurrent reads are safe.
type Registry struct {
	actions map[string]CapabilityDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]CapabilityDescriptor)}
}

// Register adds a capability descriptor. Registering the same tag twice
// returns a DuplicateActionError.
func (r *Registry) Register(desc CapabilityDescriptor) error {
	if desc.Name == "" {
		return fmt.Errorf("capability descriptor has no action tag")
	}
	if desc.Handler == nil {
		return fmt.Errorf("capability %q has no handler", desc.Name)
	}
	if _, ok := r.actions[desc.Name]; ok {
		return &DuplicateActionError{Action: desc.Name}
	}
	r.actions[desc.Name] = desc
	return nil
}

// MustRegister registers a descriptor and panics on error. Intended for the
// static catalog built at process start.
func (r *Registry) MustRegister(desc CapabilityDescriptor) {
	if err := r.Register(desc); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor for an action tag. The second return value is
// false when the tag is unknown; callers branch on it explicitly because
// unrecognized actions are a normal consequence of an evolving planner
// vocabulary, not an exceptional condition.
func (r *Registry) Lookup(tag string) (CapabilityDescriptor, bool) {
	desc, ok := r.actions[tag]
	return desc, ok
}

// Actions returns all registered action tags in sorted order.
func (r *Registry) Actions() []string {
	tags := make([]string, 0, len(r.actions))
	for tag := range r.actions {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// MissingParams returns the required parameters of desc that are absent or
// empty in params, in declaration order.
func (desc CapabilityDescriptor) MissingParams(params ParamBag) []string {
	var missing []string
	for _, name := range desc.RequiredParams {
		if !params.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
