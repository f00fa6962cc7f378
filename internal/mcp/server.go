package mcp

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/marketstack-mcp/internal/logging"
)

const (
	ServerName         = "MarketStack Financial Data"
	ServerVersion      = "1.0.0"
	ServerInstructions = "Access real-time and historical stock-market data"

	// EndpointPath is where the streamable HTTP transport is mounted.
	EndpointPath = "/mcp"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler

	handlers map[string]server.ToolHandlerFunc
	log      logging.Logger
}

func New(cfg Config) (*Server, error) {
	logger := cfg.Logger.WithName("mcp")
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(ServerInstructions),
		server.WithRecovery(),
	)

	definitions := ToolDefinitions()
	handlers := make(map[string]server.ToolHandlerFunc, len(cfg.ToolAdapters))
	for _, name := range sortedKeys(cfg.ToolAdapters) {
		tool, ok := definitions[name]
		if !ok {
			return nil, fmt.Errorf("no tool definition for adapter %q", name)
		}
		handler, err := validateArguments(tool, cfg.ToolAdapters[name].ToolAdapter)
		if err != nil {
			return nil, err
		}
		mcpServer.AddTool(tool, handler)
		handlers[name] = handler
		logger.Debug("registered tool", "tool", name)
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)
	mux := http.NewServeMux()
	mux.Handle(EndpointPath, httpServer)

	return &Server{
		MCP:      mcpServer,
		HTTP:     httpServer,
		Handler:  mux,
		handlers: handlers,
		log:      logger,
	}, nil
}

// CallTool runs a registered tool in-process, applying the same argument
// validation the transports do.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return handler(ctx, req)
}

// ServeStdio serves JSON-RPC over in/out until ctx is cancelled or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.MCP)
	stdio.SetErrorLogger(s.log.WithName("stdio").StdLog())
	s.log.Info("serving MCP over stdio", "server", ServerName, "version", ServerVersion)
	return stdio.Listen(ctx, in, out)
}

func (s *Server) Close() {
	if s.HTTP == nil {
		return
	}
	if err := s.HTTP.Shutdown(context.Background()); err != nil {
		s.log.Error(err, "error closing http transport")
	}
}
