// Package authctx implements the engine's Context: the caller identity
// carried through a request and the access predicate evaluator models and
// the query dispatcher consult before reading or writing data.
package authctx

import (
	"sync"

	"github.com/mauritsl/restapir/predicate"
)

// AccessRule names the CEL predicate used for a given (model, operation)
// pair, and optionally a specific field. Rules without a Field apply to the
// whole row (entity-level or row-level access); rules with a Field gate
// that single field.
type AccessRule struct {
	Model     string
	Operation string
	Field     string // empty means row-level
	Predicate string
}

// Policy is a compiled set of AccessRules, shared by every Context produced
// for a given deployment (one Policy, many per-request Contexts).
type Policy struct {
	mu         sync.RWMutex
	evaluators map[string]*predicate.Evaluator
}

// NewPolicy compiles rules into a Policy. Compilation errors abort
// construction since a broken access rule must fail at startup, never at
// request time.
func NewPolicy(rules []AccessRule) (*Policy, error) {
	p := &Policy{evaluators: make(map[string]*predicate.Evaluator, len(rules))}
	for _, r := range rules {
		ev, err := predicate.NewEvaluator(r.Predicate)
		if err != nil {
			return nil, err
		}
		p.evaluators[ruleKey(r.Model, r.Operation, r.Field)] = ev
	}
	return p, nil
}

func ruleKey(model, operation, field string) string {
	return model + "\x00" + operation + "\x00" + field
}

// lookup finds the most specific evaluator for (model, operation, field),
// falling back to the row-level rule (empty field) when no field-specific
// rule exists. A nil result means "no rule configured", which callers
// should treat as allow (the model itself is the last line of defense).
func (p *Policy) lookup(model, operation, field string) *predicate.Evaluator {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if field != "" {
		if ev, ok := p.evaluators[ruleKey(model, operation, field)]; ok {
			return ev
		}
	}
	return p.evaluators[ruleKey(model, operation, "")]
}

// Context carries the zero-or-one authenticated user for a request and the
// Policy it evaluates access against. A nil *Context (or one produced by
// Admin()) denotes admin / context-free mode: Access always returns true
// and no predicate is evaluated.
type Context struct {
	user   map[string]any
	policy *Policy
}

// New returns a Context for an authenticated user.
func New(policy *Policy, user map[string]any) *Context {
	return &Context{user: user, policy: policy}
}

// Admin returns a context-free Context: GetUser returns nil and Access
// always allows, matching the spec's "missing context denotes admin mode".
func Admin() *Context {
	return nil
}

// GetUser returns the authenticated user, or nil in admin mode.
func (c *Context) GetUser() map[string]any {
	if c == nil {
		return nil
	}
	return c.user
}

// Access evaluates whether the current user may perform operation on model,
// optionally scoped to a single field. data is the row/document the
// predicate's `i` variable is bound to. A nil Context (admin mode) always
// allows.
func (c *Context) Access(model, operation string, data map[string]any, field string) (bool, error) {
	if c == nil {
		return true, nil
	}
	if c.policy == nil {
		return true, nil
	}
	ev := c.policy.lookup(model, operation, field)
	if ev == nil {
		return true, nil
	}
	return ev.Evaluate(c.user, data)
}
