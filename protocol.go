package fileops

import (
	"bytes"
	"encoding/json"
)

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2024-11-05"

// Fixed server identity reported by initialize.
const (
	ServerName    = "fileops"
	ServerVersion = "1.0.0"
)

// Methods understood by the dispatcher.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
)

// ServerInfo identifies the server in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsCapability is advertised as an empty object.
type ToolsCapability struct{}

// Capabilities lists what the server supports. Only tools are offered.
type Capabilities struct {
	Tools ToolsCapability `json:"tools"`
}

// InitializeResult is the result of an initialize request.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ListToolsResult is the result of a tools/list request.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams is the params member of a tools/call request.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`

	// rawName is the JSON text of a name member that was not a string.
	rawName string
}

// UnmarshalJSON decodes params by exact member name. A name that is not a
// string leaves Name empty so it never matches a tool.
func (p *CallToolParams) UnmarshalJSON(data []byte) error {
	members, err := decodeMembers(data)
	if err != nil {
		return err
	}

	*p = CallToolParams{Arguments: members["arguments"]}
	name, ok := stringMember(members, "name")
	if ok {
		p.Name = name
	} else if raw, present := members["name"]; present {
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err == nil {
			p.rawName = compact.String()
		}
	}
	return nil
}

// DisplayName is the requested tool name as it should appear in messages.
func (p CallToolParams) DisplayName() string {
	if p.Name == "" && p.rawName != "" {
		return p.rawName
	}
	return p.Name
}

// ToolResultContent is one content block of a tool result.
type ToolResultContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the result of a tools/call request.
type CallToolResult struct {
	Content []ToolResultContent `json:"content"`
	IsError bool                `json:"isError,omitempty"`
}

func textResult(text string) CallToolResult {
	return CallToolResult{
		Content: []ToolResultContent{{Type: "text", Text: text}},
	}
}
