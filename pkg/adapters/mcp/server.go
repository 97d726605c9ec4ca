package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/session"
)

// HistoryURI is the resource exposing recent calculations.
const HistoryURI = "abacus://history"

// defaultHistoryLimit bounds get_history and the history resource when no
// limit is requested.
const defaultHistoryLimit = 20

// EvaluateResponse is the structured result of evaluate_expression.
type EvaluateResponse struct {
	Expression string         `json:"expression" jsonschema_description:"The evaluated expression"`
	Result     *float64       `json:"result,omitempty" jsonschema_description:"Numeric result, absent on failure"`
	Display    domain.Display `json:"display" jsonschema_description:"Input and output displays after evaluation"`
	Error      string         `json:"error,omitempty" jsonschema_description:"Message shown on the output display on failure"`
	Kind       string         `json:"kind,omitempty" jsonschema_description:"Failure kind"`
}

// PressResponse is the structured result of press_keys.
type PressResponse struct {
	SessionID string               `json:"session_id" jsonschema_description:"Session the keys were applied to"`
	Display   domain.Display       `json:"display" jsonschema_description:"Displays after the last key"`
	Failures  []session.KeyFailure `json:"failures,omitempty" jsonschema_description:"Keys that raised a calculator failure"`
}

// HistoryResponse is the structured result of get_history.
type HistoryResponse struct {
	Entries []domain.HistoryEntry `json:"entries" jsonschema_description:"Entries, oldest first"`
}

type evaluateArgs struct {
	Expression string `mapstructure:"expression"`
}

type pressArgs struct {
	SessionID string   `mapstructure:"session_id"`
	Keys      []string `mapstructure:"keys"`
}

type historyArgs struct {
	Limit int `mapstructure:"limit"`
}

// Server exposes calculator tools over MCP.
type Server struct {
	sessions  *session.Manager
	history   ports.HistoryStore
	calcOpts  []abacus.Option
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithHistory records evaluate_expression results and backs get_history.
func WithHistory(h ports.HistoryStore) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithCalculatorOptions applies opts to every one-shot calculator.
func WithCalculatorOptions(opts ...abacus.Option) Option {
	return func(s *Server) {
		s.calcOpts = append(s.calcOpts, opts...)
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server backed by sessions.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("abacus-mcp", abacus.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func decodeArgs(args map[string]interface{}, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	evaluateTool := mcp.NewTool("evaluate_expression",
		mcp.WithDescription("Evaluate an arithmetic expression on a fresh calculator. Accepts + - * / % ** parentheses and implicit multiplication."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Expression to evaluate, e.g. 2(3+4)")),
		mcp.WithOutputSchema[EvaluateResponse](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	pressTool := mcp.NewTool("press_keys",
		mcp.WithDescription("Press keys on a persistent calculator session. The session is created on first use."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithArray("keys", mcp.Required(), mcp.WithStringItems(), mcp.Description("Keys in order, e.g. [\"2\",\"+\",\"3\",\"=\"] or named keys like sqrt")),
		mcp.WithOutputSchema[PressResponse](),
	)
	s.mcpServer.AddTool(pressTool, mcp.NewStructuredToolHandler(s.handlePress))

	historyTool := mcp.NewTool("get_history",
		mcp.WithDescription("List recent calculations, oldest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries")),
		mcp.WithOutputSchema[HistoryResponse](),
	)
	s.mcpServer.AddTool(historyTool, mcp.NewStructuredToolHandler(s.handleHistory))
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvaluateResponse, error) {
	var in evaluateArgs
	if err := decodeArgs(args, &in); err != nil {
		return EvaluateResponse{}, err
	}

	opts := append([]abacus.Option{abacus.WithLogger(s.logger)}, s.calcOpts...)
	if s.history != nil {
		opts = append(opts, abacus.WithHistory(s.history))
	}
	res, err := abacus.Apply(ctx, in.Expression, opts...)

	out := EvaluateResponse{Expression: in.Expression, Display: res.Display}
	if err != nil {
		out.Error = res.Display.Output
		out.Kind = string(domain.KindOf(err))
		return out, nil
	}
	out.Result = &res.Value
	return out, nil
}

func (s *Server) handlePress(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PressResponse, error) {
	var in pressArgs
	if err := decodeArgs(args, &in); err != nil {
		return PressResponse{}, err
	}
	if in.SessionID == "" {
		return PressResponse{}, errors.New("session_id is required")
	}

	if _, err := s.sessions.LoadOrStart(ctx, in.SessionID); err != nil {
		return PressResponse{}, fmt.Errorf("start session: %w", err)
	}
	res, err := s.sessions.Press(ctx, in.SessionID, in.Keys...)
	if err != nil {
		s.logger.Warn("MCP press rejected", "session_id", in.SessionID, "err", err)
		return PressResponse{}, err
	}
	return PressResponse{
		SessionID: in.SessionID,
		Display:   res.State.Display,
		Failures:  res.Failures,
	}, nil
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (HistoryResponse, error) {
	var in historyArgs
	if err := decodeArgs(args, &in); err != nil {
		return HistoryResponse{}, err
	}
	entries, err := s.listHistory(ctx, in.Limit)
	if err != nil {
		return HistoryResponse{}, err
	}
	return HistoryResponse{Entries: entries}, nil
}

func (s *Server) listHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if s.history == nil {
		return []domain.HistoryEntry{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(HistoryURI, "Calculation History",
		mcp.WithMIMEType("application/json"),
	), s.readHistory)
}

func (s *Server) readHistory(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := s.listHistory(ctx, 0)
	if err != nil {
		return nil, err
	}
	jsonBytes, _ := json.Marshal(entries)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      HistoryURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
