// Package tools manages the executor registry and the dispatch path between
// model tool calls and their implementations.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"swarm/internal/agent/ports"
	"swarm/internal/logging"
)

// Registry holds the tools available to an agent. It implements
// ports.ToolRegistry and adds Dispatch, the single entry point the agent loop
// uses to run a call.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]ports.ToolExecutor
	logger logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]ports.ToolExecutor),
		logger: logging.OrNop(logger),
	}
}

// Register adds a tool. Registering a duplicate name is an error.
func (r *Registry) Register(tool ports.ToolExecutor) error {
	name := tool.Definition().Name
	if name == "" {
		return fmt.Errorf("register: tool has empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("register: tool %q already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (ports.ToolExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool %q not found", name)
	}
	return tool, nil
}

// List returns definitions for all registered tools, sorted by name so the
// model always sees a stable ordering.
func (r *Registry) List() []ports.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ports.ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Unregister removes a tool by name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return fmt.Errorf("unregister: tool %q not found", name)
	}
	delete(r.tools, name)
	return nil
}

// Dispatch validates and executes one tool call. It never returns an error
// and never panics: unknown tools, bad arguments, executor failures and
// executor panics all come back as a ToolResult whose Error field is set, so
// the agent loop can feed the failure back to the model and continue.
func (r *Registry) Dispatch(ctx context.Context, call ports.ToolCall) (result *ports.ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool %s panicked: %v", call.Name, rec)
			result = &ports.ToolResult{
				CallID: call.ID,
				Error:  fmt.Errorf("tool %s panicked: %v", call.Name, rec),
			}
		}
	}()

	tool, err := r.Get(call.Name)
	if err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: err}
	}

	if err := ValidateArguments(tool.Definition().Parameters, call.Arguments); err != nil {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("%s: %w", call.Name, err)}
	}

	r.logger.Debug("dispatch %s call=%s", call.Name, call.ID)
	res, err := tool.Execute(ctx, call)
	if err != nil {
		// Executors report tool-level failures inside the result; an error
		// return is an infrastructure fault, folded in the same way.
		return &ports.ToolResult{CallID: call.ID, Error: err}
	}
	if res == nil {
		return &ports.ToolResult{CallID: call.ID, Error: fmt.Errorf("tool %s returned no result", call.Name)}
	}
	if res.CallID == "" {
		res.CallID = call.ID
	}
	return res
}
