package script

import (
	"context"
	"sync"

	"github.com/mauritsl/restapir"
	"github.com/mauritsl/restapir/authctx"
	"github.com/mauritsl/restapir/transform"
)

// Registry holds named Script Definitions that have been registered for
// lookup by the script() transform operator. Unlike eval(), script() only
// resolves scripts from this table and never carries a caller Context into
// the nested run: nested scripts always execute in admin mode.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry builds an empty script Registry.
func NewRegistry() *Registry {
	return &Registry{defs: map[string]Definition{}}
}

// Register adds or replaces a named Definition.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Name] = def
}

func (r *Registry) lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// opEval implements the `eval` transform operator: arg is a freshly defined
// Script (decoded from its JSON shape) run once against input, in the
// calling Runtime's own admin-mode storage context. It is the anonymous,
// inline counterpart to `script`.
func (r *Runtime) opEval(ex *transform.Exec, arg any, input any) (any, error) {
	var def Definition
	if err := decodeScriptArg(arg, &def); err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = "<eval>"
	}
	nested, err := NewRuntime(def, r.storage, r.registry)
	if err != nil {
		return nil, err
	}
	state, ok := input.(map[string]any)
	if !ok {
		state = map[string]any{"value": input}
	}
	return nested.Run(context.Background(), authctx.Admin(), state)
}

// opScript implements the `script` transform operator: arg is the name of a
// Definition previously registered on this Runtime's Registry. It always
// runs context-free (admin mode), regardless of the caller's Context.
func (r *Runtime) opScript(ex *transform.Exec, arg any, input any) (any, error) {
	name, ok := arg.(string)
	if !ok {
		return nil, restapir.New(restapir.InvalidOperatorArgument, "script: the script operator requires a string name argument")
	}
	if r.registry == nil {
		return nil, restapir.Newf(restapir.InvalidOperatorArgument, "script: no registry configured, cannot resolve %q", name)
	}
	def, ok := r.registry.lookup(name)
	if !ok {
		return nil, restapir.Newf(restapir.InvalidOperatorArgument, "script: no registered script named %q", name)
	}
	nested, err := NewRuntime(def, r.storage, r.registry)
	if err != nil {
		return nil, err
	}
	state, ok := input.(map[string]any)
	if !ok {
		state = map[string]any{"value": input}
	}
	return nested.Run(context.Background(), authctx.Admin(), state)
}

func decodeScriptArg(arg any, out *Definition) error {
	data, err := restapir.DefaultMarshaler.Marshal(arg)
	if err != nil {
		return restapir.Newf(restapir.InvalidOperatorArgument, "script: encoding eval argument: %v", err)
	}
	if err := restapir.DefaultMarshaler.Unmarshal(data, out); err != nil {
		return restapir.Newf(restapir.InvalidOperatorArgument, "script: decoding eval argument: %v", err)
	}
	return nil
}
