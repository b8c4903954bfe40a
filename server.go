package fileops

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// ServerConfig holds all configuration for Server
type ServerConfig struct {
	logger     Logger
	filesystem Filesystem
}

// ServerConfigOption is a function that modifies ServerConfig
type ServerConfigOption func(*ServerConfig)

// UseLogger sets a custom logger
func UseLogger(logger Logger) ServerConfigOption {
	return func(c *ServerConfig) {
		c.logger = logger
	}
}

// UseFilesystem sets the filesystem the built-in tools write to
func UseFilesystem(fsys Filesystem) ServerConfigOption {
	return func(c *ServerConfig) {
		c.filesystem = fsys
	}
}

func defaultConfig() *ServerConfig {
	return &ServerConfig{
		logger:     NewNullLogger(),
		filesystem: NewOSFilesystem(),
	}
}

// Server turns one input line into an Outcome. Its tool catalog and
// initialize payload are fixed at construction.
type Server struct {
	logger     Logger
	catalog    *ToolCatalog
	initResult InitializeResult
}

// NewServer creates a Server with the built-in tools.
func NewServer(opts ...ServerConfigOption) (*Server, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = NewNullLogger()
	}
	if cfg.filesystem == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}

	catalog, err := NewToolCatalog(BuiltinTools(cfg.filesystem)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool catalog: %w", err)
	}

	return &Server{
		logger:  cfg.logger,
		catalog: catalog,
		initResult: InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    Capabilities{Tools: ToolsCapability{}},
			ServerInfo:      ServerInfo{Name: ServerName, Version: ServerVersion},
		},
	}, nil
}

// Dispatch parses and handles a single line of input.
func (s *Server) Dispatch(ctx context.Context, line []byte) Outcome {
	ctx, span := StartSpan(ctx, "Server.Dispatch")
	defer span.End()

	if len(bytes.TrimSpace(line)) == 0 {
		return Drop("empty line")
	}

	var request Request
	if err := json.Unmarshal(line, &request); err != nil {
		recordSpanError(span, err)
		s.logger.WithErr(err).Debug("Dropping malformed message")
		return Drop(fmt.Sprintf("malformed message: %v", err))
	}

	span.SetAttributes(attribute.String("method", request.Method))
	return s.handleRequest(ctx, &request)
}

func (s *Server) handleRequest(ctx context.Context, request *Request) Outcome {
	s.logger.WithFields(map[string]interface{}{
		"method": request.Method,
		"id":     string(request.ID),
	}).Debug("Received request")

	switch request.Method {
	case MethodInitialize:
		return s.handleInitialize(request)
	case MethodInitialized:
		s.logger.Debug("Client initialized")
		return Suppress()
	case MethodToolsList:
		return s.handleToolsList(request)
	case MethodToolsCall:
		return s.handleToolsCall(ctx, request)
	default:
		s.logger.WithFields(map[string]interface{}{
			"method": request.Method,
			"id":     string(request.ID),
		}).Debug("Ignoring unrecognized method")
		return Drop(fmt.Sprintf("unrecognized method %q", request.Method))
	}
}

func (s *Server) handleInitialize(request *Request) Outcome {
	return Emit(newResponse(request.ID, s.initResult))
}

func (s *Server) handleToolsList(request *Request) Outcome {
	return Emit(newResponse(request.ID, s.ListTools()))
}

func (s *Server) handleToolsCall(ctx context.Context, request *Request) Outcome {
	ctx, span := StartSpan(ctx, "Server.handleToolsCall")
	defer span.End()

	// Params that are missing or not an object leave the tool name empty,
	// which is then reported as an unknown tool.
	var params CallToolParams
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, &params); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"id":     string(request.ID),
				"params": string(request.Params),
			}).WithErr(err).Debug("Unusable tools/call params")
			params = CallToolParams{}
		}
	}

	span.SetAttributes(attribute.String("tool", params.DisplayName()))

	result, err := s.CallTool(ctx, params)
	if err != nil {
		recordSpanError(span, err)
		if errors.Is(err, ErrToolNotFound) {
			return Emit(newErrorResponse(request.ID, ErrorCodeMethodNotFound, "Unknown tool: "+params.DisplayName()))
		}
		return Emit(newErrorResponse(request.ID, ErrorCodeExecutionFailed, err.Error()))
	}

	return Emit(newResponse(request.ID, result))
}

// ListTools returns the tool descriptors in listing order.
func (s *Server) ListTools() ListToolsResult {
	return ListToolsResult{Tools: s.catalog.List()}
}

// CallTool runs the named tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, params CallToolParams) (CallToolResult, error) {
	ctx, span := StartSpan(ctx, "Server.CallTool")
	defer span.End()
	span.SetAttributes(attribute.String("tool", params.Name))

	var err error
	defer func() {
		recordSpanError(span, err)
	}()

	result, err := s.catalog.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		fields := map[string]interface{}{
			"tool": params.Name,
		}
		var fsErr *FSError
		if errors.As(err, &fsErr) {
			fields["kind"] = fsErr.Kind.String()
			fields["op"] = fsErr.Op
			fields["path"] = fsErr.Path
		}
		s.logger.WithFields(fields).WithErr(err).Error("Tool call failed")
		return CallToolResult{}, err
	}

	s.logger.WithFields(map[string]interface{}{
		"tool": params.Name,
	}).Debug("Tool call succeeded")

	return result, nil
}
