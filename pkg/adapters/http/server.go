package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/session"
)

// Config wires the server to its collaborators.
type Config struct {
	Sessions *session.Manager
	History  ports.HistoryStore

	// Metrics, when set, is served on /metrics and counts pressed keys.
	Metrics *observability.Metrics

	// Calculator options applied to one-shot /eval calculators, e.g. hooks.
	CalculatorOptions []abacus.Option

	Logger *slog.Logger
}

// Server implements ServerInterface.
type Server struct {
	sessions *session.Manager
	history  ports.HistoryStore
	metrics  *observability.Metrics
	calcOpts []abacus.Option
	logger   *slog.Logger

	Streams *StreamManager
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates a Server from cfg.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		sessions: cfg.Sessions,
		history:  cfg.History,
		metrics:  cfg.Metrics,
		calcOpts: cfg.CalculatorOptions,
		logger:   logger,
		Streams:  NewStreamManager(logger),
	}
}

// NewHandler builds the full HTTP handler: OpenAPI document, request
// validation, API routes and optional metrics.
func NewHandler(cfg Config) (http.Handler, error) {
	server := NewServer(cfg)

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := RequestValidator(doc, server.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(RawSpec())
	})
	if server.metrics != nil {
		r.Handle("/metrics", server.metrics.Handler())
	}

	return HandlerFromMux(server, r), nil
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// Failure describes a calculator failure in responses.
type Failure struct {
	Key     string           `json:"key,omitempty"`
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func failureOf(err error) *Failure {
	var ce *domain.CalcError
	if !errors.As(err, &ce) {
		return &Failure{Kind: domain.KindGeneric, Message: err.Error()}
	}
	return &Failure{Kind: ce.Kind, Message: ce.Message()}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": abacus.Version})
}

// EvalRequest is the body of POST /eval.
type EvalRequest struct {
	Expression string `json:"expression"`
}

// EvalResponse is the body returned by POST /eval.
type EvalResponse struct {
	Expression string         `json:"expression"`
	Result     *float64       `json:"result,omitempty"`
	Display    domain.Display `json:"display"`
	Error      *Failure       `json:"error,omitempty"`
}

// Evaluate handles POST /eval. Calculator failures are part of a 200 response.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := append([]abacus.Option{}, s.calcOpts...)
	if s.history != nil {
		opts = append(opts, abacus.WithHistory(s.history))
	}
	res, err := abacus.Apply(r.Context(), body.Expression, opts...)

	resp := EvalResponse{Expression: body.Expression, Display: res.Display}
	if err != nil {
		resp.Error = failureOf(err)
	} else {
		resp.Result = &res.Value
	}
	writeJSON(w, http.StatusOK, resp)
}

// SessionResponse describes one session.
type SessionResponse struct {
	ID    string        `json:"id"`
	State *domain.State `json:"state"`
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.logger.Error("list sessions failed", "err", err)
		writeError(w, http.StatusInternalServerError, "list sessions failed")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Create(r.Context())
	if err != nil {
		s.logger.Error("create session failed", "err", err)
		writeError(w, http.StatusInternalServerError, "create session failed")
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{ID: state.SessionID, State: state})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, id string) {
	state, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		s.storeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: id, State: state})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.storeError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PressRequest is the body of POST /sessions/{id}/press.
type PressRequest struct {
	Keys []string `json:"keys"`
}

// PressResponse is returned after keys were applied.
type PressResponse struct {
	State    *domain.State  `json:"state"`
	Display  domain.Display `json:"display"`
	Failures []Failure      `json:"failures,omitempty"`
}

// PressKeys handles POST /sessions/{id}/press.
func (s *Server) PressKeys(w http.ResponseWriter, r *http.Request, id string) {
	var body PressRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.press(r, id, body.Keys)
	if err != nil {
		s.storeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// press applies keys through the session manager and broadcasts the diff.
func (s *Server) press(r *http.Request, id string, keys []string) (*PressResponse, error) {
	res, err := s.sessions.Press(r.Context(), id, keys...)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Keys.Add(float64(len(keys)))
	}
	if res.Diff != nil {
		if data, err := json.Marshal(res.Diff); err == nil {
			s.Streams.Broadcast(id, string(data))
		}
	}

	resp := &PressResponse{State: res.State, Display: res.State.Display}
	for _, f := range res.Failures {
		resp.Failures = append(resp.Failures, Failure{Key: f.Key, Kind: f.Kind, Message: f.Message})
	}
	return resp, nil
}

// storeError maps session errors onto HTTP statuses.
func (s *Server) storeError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %s not found", id))
	case errors.Is(err, session.ErrUnknownKey):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("session operation failed", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "session operation failed")
	}
}

// SubscribeEvents handles GET /sessions/{id}/events as server-sent events.
// Each event carries a JSON domain.StateDiff.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, id string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	fmt.Fprint(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("event stream closed", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// HistoryResponse is the body of GET /history.
type HistoryResponse struct {
	Entries []domain.HistoryEntry `json:"entries"`
}

// ListHistory handles GET /history.
func (s *Server) ListHistory(w http.ResponseWriter, r *http.Request, params ListHistoryParams) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, HistoryResponse{Entries: []domain.HistoryEntry{}})
		return
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list history failed", "err", err)
		writeError(w, http.StatusInternalServerError, "list history failed")
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

// ClearHistory handles DELETE /history.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.history != nil {
		if err := s.history.Clear(r.Context()); err != nil {
			s.logger.Error("clear history failed", "err", err)
			writeError(w, http.StatusInternalServerError, "clear history failed")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
