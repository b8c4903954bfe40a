package fileops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrToolNotFound is returned when a call names a tool the catalog lacks.
var ErrToolNotFound = errors.New("tool not found")

// ToolHandler runs a tool. arguments has already been validated against the
// tool's InputSchema.
type ToolHandler func(ctx context.Context, arguments json.RawMessage) (CallToolResult, error)

// Tool describes a callable tool. Only Name, Description and InputSchema are
// sent to clients.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	Handler     ToolHandler     `json:"-"`
}

// ArgumentError reports arguments that do not satisfy a tool's InputSchema.
type ArgumentError struct {
	Tool       string
	Violations []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Violations, "; "))
}

type catalogEntry struct {
	tool   Tool
	schema *gojsonschema.Schema
}

// ToolCatalog is an ordered, immutable set of tools.
type ToolCatalog struct {
	entries []catalogEntry
	index   map[string]int
}

// NewToolCatalog validates tools and returns a catalog listing them in the
// given order.
func NewToolCatalog(tools ...Tool) (*ToolCatalog, error) {
	c := &ToolCatalog{
		entries: make([]catalogEntry, 0, len(tools)),
		index:   make(map[string]int, len(tools)),
	}

	for _, tool := range tools {
		schema, err := validateTool(tool)
		if err != nil {
			return nil, err
		}
		if _, dup := c.index[tool.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", tool.Name)
		}
		c.index[tool.Name] = len(c.entries)
		c.entries = append(c.entries, catalogEntry{tool: tool, schema: schema})
	}

	return c, nil
}

func validateTool(tool Tool) (*gojsonschema.Schema, error) {
	if tool.Name == "" {
		return nil, fmt.Errorf("tool name cannot be empty")
	}
	if tool.Description == "" {
		return nil, fmt.Errorf("tool %s: description cannot be empty", tool.Name)
	}
	if tool.Handler == nil {
		return nil, fmt.Errorf("tool %s: handler cannot be nil", tool.Name)
	}
	if len(tool.InputSchema) == 0 {
		return nil, fmt.Errorf("tool %s: input schema cannot be empty", tool.Name)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(tool.InputSchema))
	if err != nil {
		return nil, fmt.Errorf("tool %s: invalid input schema: %w", tool.Name, err)
	}
	return schema, nil
}

// List returns the tools in catalog order. The slice is a copy.
func (c *ToolCatalog) List() []Tool {
	tools := make([]Tool, len(c.entries))
	for i, e := range c.entries {
		tools[i] = e.tool
	}
	return tools
}

// Lookup returns the tool registered under name.
func (c *ToolCatalog) Lookup(name string) (Tool, bool) {
	i, ok := c.index[name]
	if !ok {
		return Tool{}, false
	}
	return c.entries[i].tool, true
}

// Call validates arguments against the named tool's schema and runs it.
// Empty or null arguments are treated as an empty object.
func (c *ToolCatalog) Call(ctx context.Context, name string, arguments json.RawMessage) (CallToolResult, error) {
	i, ok := c.index[name]
	if !ok {
		return CallToolResult{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	entry := c.entries[i]

	if len(arguments) == 0 || string(arguments) == "null" {
		arguments = json.RawMessage(`{}`)
	}

	result, err := entry.schema.Validate(gojsonschema.NewBytesLoader(arguments))
	if err != nil {
		return CallToolResult{}, fmt.Errorf("failed to validate arguments for %s: %w", name, err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return CallToolResult{}, &ArgumentError{Tool: name, Violations: violations}
	}

	return entry.tool.Handler(ctx, arguments)
}
