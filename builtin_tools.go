package fileops

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	SaveFileToolName      = "save_file"
	MakeDirectoryToolName = "make_directory"
)

var saveFileSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"path": {
			"type": "string",
			"description": "Absolute or relative file path"
		},
		"content": {
			"type": "string",
			"description": "Content to write to the file"
		}
	},
	"required": ["path", "content"]
}`)

var makeDirectorySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"path": {
			"type": "string",
			"description": "Directory path to create"
		}
	},
	"required": ["path"]
}`)

// stringArguments pulls the named string members out of validated arguments.
// Lookups are by exact name, like the schema's.
func stringArguments(tool string, arguments json.RawMessage, names ...string) ([]string, error) {
	members, err := decodeMembers(arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s arguments: %w", tool, err)
	}
	values := make([]string, len(names))
	for i, name := range names {
		value, ok := stringMember(members, name)
		if !ok {
			return nil, fmt.Errorf("%s: argument %q must be a string", tool, name)
		}
		values[i] = value
	}
	return values, nil
}

// SaveFileTool returns the save_file tool bound to fsys.
func SaveFileTool(fsys Filesystem) Tool {
	return Tool{
		Name:        SaveFileToolName,
		Description: "Create or overwrite a file at the specified path with the given content. Creates parent directories automatically.",
		InputSchema: saveFileSchema,
		Handler: func(ctx context.Context, arguments json.RawMessage) (CallToolResult, error) {
			args, err := stringArguments(SaveFileToolName, arguments, "path", "content")
			if err != nil {
				return CallToolResult{}, err
			}
			path, content := args[0], args[1]
			if err := fsys.SaveFile(ctx, path, content); err != nil {
				return CallToolResult{}, err
			}
			return textResult("Saved: " + path), nil
		},
	}
}

// MakeDirectoryTool returns the make_directory tool bound to fsys.
func MakeDirectoryTool(fsys Filesystem) Tool {
	return Tool{
		Name:        MakeDirectoryToolName,
		Description: "Create a directory (and parent directories) at the specified path.",
		InputSchema: makeDirectorySchema,
		Handler: func(ctx context.Context, arguments json.RawMessage) (CallToolResult, error) {
			args, err := stringArguments(MakeDirectoryToolName, arguments, "path")
			if err != nil {
				return CallToolResult{}, err
			}
			path := args[0]
			if err := fsys.MakeDirectory(ctx, path); err != nil {
				return CallToolResult{}, err
			}
			return textResult("Created: " + path), nil
		},
	}
}

// BuiltinTools returns the server's tool set in listing order.
func BuiltinTools(fsys Filesystem) []Tool {
	return []Tool{
		SaveFileTool(fsys),
		MakeDirectoryTool(fsys),
	}
}
