// Package mcpserver exposes registered tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"searchtool/internal/domain"
	"searchtool/internal/infra/config"
)

// Server serves tools from a ToolExecutor to MCP clients.
type Server struct {
	mcp     *server.MCPServer
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New builds an MCP server that publishes every tool in tools.
func New(version string, tools domain.ToolExecutor, cfg config.ServerConfig, logger *slog.Logger) *Server {
	name := cfg.Name
	if name == "" {
		name = "searchtool"
	}
	s := &Server{
		mcp:     server.NewMCPServer(name, version, server.WithToolCapabilities(false), server.WithRecovery()),
		limiter: newLimiter(cfg),
		logger:  logger,
	}
	for _, t := range tools.List() {
		schema := t.Schema()
		s.mcp.AddTool(mcp.NewToolWithRawSchema(schema.Name, schema.Description, schema.Parameters), s.handler(t))
		logger.Debug("mcp tool registered", "tool", schema.Name)
	}
	return s
}

func newLimiter(cfg config.ServerConfig) *rate.Limiter {
	if cfg.RatePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
}

func (s *Server) handler(t domain.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			err = fmt.Errorf("%w: %v", domain.ErrRateLimit, err)
			s.logger.Warn("mcp call rejected", "tool", t.Name(), "error", err, "code", domain.ErrorCodeOf(err))
			return mcp.NewToolResultError(err.Error()), nil
		}

		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		params, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		res, err := t.Execute(ctx, params)
		if err != nil {
			s.logger.Error("mcp tool failed", "tool", t.Name(), "error", err, "code", domain.ErrorCodeOf(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		if res.IsError {
			return mcp.NewToolResultError(res.Content), nil
		}
		return mcp.NewToolResultText(res.Content), nil
	}
}

// Serve reads JSON-RPC messages from in and writes responses to out until
// ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("mcp server listening on stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return domain.WrapOp("mcpserver.Serve", err)
	}
	return nil
}

// HandleMessage processes a single JSON-RPC message.
func (s *Server) HandleMessage(ctx context.Context, msg json.RawMessage) mcp.JSONRPCMessage {
	return s.mcp.HandleMessage(ctx, msg)
}
