package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownAction is returned when a call names an action no handler was
// registered for.
var ErrUnknownAction = errors.New("unknown action")

// Frame operations.
const (
	OpCall   = "call"   // front-end -> shell: invoke an action
	OpResult = "result" // shell -> front-end: action succeeded
	OpError  = "error"  // shell -> front-end: action failed
)

// Frame is the wire message exchanged with the front-end over the bridge
// socket.
type Frame struct {
	Op     string          `json:"op"`
	ID     string          `json:"id,omitempty"`
	Action string          `json:"action,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Handler implements one named action. The body is the raw JSON payload from
// the call frame; the returned value is serialized into the result frame. An
// error returned here is carried verbatim to the caller, it is never thrown
// inside the shell.
type Handler func(ctx context.Context, body json.RawMessage) (any, error)

// Registry maps action names to handlers. Safe for concurrent use;
// registration typically happens once at startup, lookups on every call.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty action registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to an action name. Registering the same name twice
// is refused so a typo cannot silently shadow an existing action.
func (r *Registry) Register(action string, h Handler) error {
	if action == "" {
		return fmt.Errorf("action name cannot be empty")
	}
	if h == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[action]; exists {
		return fmt.Errorf("action %q is already registered", action)
	}
	r.handlers[action] = h
	return nil
}

// Lookup returns the handler for an action name.
func (r *Registry) Lookup(action string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[action]
	return h, ok
}

// Actions returns the registered action names, for introspection.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
