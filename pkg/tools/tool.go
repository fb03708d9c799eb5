package tools

import (
	"sync"

	"bookwyrm/pkg/api"
	"bookwyrm/pkg/llm"
)

// Re-export contract types via aliases so tool implementations stay local
// to this package.
type Tool = api.Tool
type ToolResult = api.ToolResult

// ToolRegistry acts as a central inventory for all tools available to the
// assistant. The set is fixed at process start; registration order is
// preserved so the reasoning engine always sees a stable tool list.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry. Re-registering a name replaces the
// implementation but keeps its original position.
func (tr *ToolRegistry) Register(tool Tool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if _, exists := tr.tools[tool.Name()]; !exists {
		tr.order = append(tr.order, tool.Name())
	}
	tr.tools[tool.Name()] = tool
}

// Get retrieves a tool by name.
func (tr *ToolRegistry) Get(name string) (Tool, bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	tool, ok := tr.tools[name]
	return tool, ok
}

// GetAll returns all registered tools in registration order.
func (tr *ToolRegistry) GetAll() []Tool {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	out := make([]Tool, 0, len(tr.order))
	for _, name := range tr.order {
		out = append(out, tr.tools[name])
	}
	return out
}

// Specs converts the registered tools into the provider-neutral form the
// reasoning engine binding publishes on every call.
func (tr *ToolRegistry) Specs() []llm.ToolSpec {
	all := tr.GetAll()
	specs := make([]llm.ToolSpec, 0, len(all))
	for _, t := range all {
		specs = append(specs, llm.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
			Required:    t.RequiredParameters(),
		})
	}
	return specs
}
