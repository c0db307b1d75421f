// Package http exposes Colloquy dialogue sessions over a JSON API.
//
// Each session owns its own engine. Output produced by a request (lines,
// choices, events) is returned in that request's response and streamed to
// subscribers of /sessions/{id}/events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/internal/presentation/graph"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// APIVersion is reported by GET /info.
const APIVersion = "1.0.0"

// StartRequest is the body of POST /sessions.
type StartRequest struct {
	GraphID string `json:"graph_id"`
	// Profile selects the player profile backing the session's globals.
	Profile string `json:"profile,omitempty"`
}

// EngineFactory builds the engine for a new session. collab must be passed to
// the engine so the session can capture output.
type EngineFactory func(req StartRequest, collab domain.Collaborators) (*colloquy.Engine, error)

// Server holds the live sessions.
type Server struct {
	factory EngineFactory
	loader  ports.GraphLoader
	logger  *slog.Logger
	baseCtx context.Context

	mu       sync.RWMutex
	sessions map[string]*session

	Streams *StreamManager
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithLoader enables the /graphs endpoints.
func WithLoader(loader ports.GraphLoader) Option {
	return func(s *Server) {
		s.loader = loader
	}
}

// WithBaseContext sets the context runs are bound to. Runs outlive the request
// that started them, so this must not be a request context.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		s.baseCtx = ctx
	}
}

// NewServer creates a server building session engines with factory.
func NewServer(factory EngineFactory, opts ...Option) *Server {
	s := &Server{
		factory:  factory,
		logger:   logging.NewNop(),
		baseCtx:  context.Background(),
		sessions: make(map[string]*session),
		Streams:  NewStreamManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)

	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.listGraphs)
		r.Get("/{graphID}/mermaid", s.getMermaid)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.startSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.endSession)
			r.Post("/confirm", s.confirm)
			r.Post("/choice", s.choose)
			r.Post("/interrupt", s.interrupt)
			r.Get("/variables", s.getVariables)
			r.Get("/events", s.subscribeEvents)
		})
	})

	return enableCORS(r)
}

// Close ends every live session and saves its profile.
func (s *Server) Close() {
	s.mu.RLock()
	live := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.RUnlock()

	for _, sess := range live {
		sess.engine.End()
		s.retire(sess, "server closed")
	}
}

// Len returns the number of live sessions.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "colloquy-http",
		"version":     colloquy.Version,
		"api_version": APIVersion,
	})
}

func (s *Server) listGraphs(w http.ResponseWriter, r *http.Request) {
	if s.loader == nil {
		s.writeError(w, http.StatusNotFound, errors.New("no graph loader configured"))
		return
	}
	ids, err := s.loader.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"graphs": ids})
}

func (s *Server) getMermaid(w http.ResponseWriter, r *http.Request) {
	if s.loader == nil {
		s.writeError(w, http.StatusNotFound, errors.New("no graph loader configured"))
		return
	}
	g, err := s.loader.Load(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(g, nil))
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GraphID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body: graph_id is required"))
		return
	}

	id := uuid.NewString()
	sess := &session{id: id, graphID: req.GraphID, streams: s.Streams}
	eng, err := s.factory(req, sess.collaborators())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	sess.engine = eng

	if err := eng.Start(s.baseCtx, req.GraphID); err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	s.logger.Info("Session Started", "session_id", id, "graph_id", req.GraphID, "run_id", eng.RunID())
	go s.retireWhenDone(sess, eng.Done())

	s.respond(w, r, sess, http.StatusCreated)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id := chi.URLParam(r, "sessionID")
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("session '%s' not found", id))
	}
	return sess, ok
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.lookup(w, r); ok {
		s.respond(w, r, sess, http.StatusOK)
	}
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.engine.End()
	s.retire(sess, "deleted")
	s.writeJSON(w, http.StatusOK, sess.state())
}

// retireWhenDone forgets the session once its run ends, even when no request
// is in flight (timed nodes, Close).
func (s *Server) retireWhenDone(sess *session, done <-chan struct{}) {
	<-done
	s.retire(sess, "finished")
}

// retire removes an ended session and saves its profile. Only the first call
// for a session has an effect.
func (s *Server) retire(sess *session, reason string) {
	s.mu.Lock()
	_, live := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	if !live {
		return
	}
	if err := sess.engine.Save(s.baseCtx); err != nil {
		s.logger.Warn("profile save failed", "session_id", sess.id, "err", err)
	}
	s.logger.Info("Session Ended", "session_id", sess.id, "reason", reason)
}

func (s *Server) confirm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !sess.engine.ConfirmAdvance() {
		s.writeError(w, http.StatusConflict, errors.New("dialogue is not waiting for input"))
		return
	}
	s.respond(w, r, sess, http.StatusOK)
}

// ChoiceRequest is the body of POST /sessions/{id}/choice.
type ChoiceRequest struct {
	OptionID int `json:"option_id"`
}

func (s *Server) choose(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if err := sess.engine.SelectChoice(req.OptionID); err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	if err := sess.engine.Save(r.Context()); err != nil {
		s.logger.Warn("profile save failed", "session_id", sess.id, "err", err)
	}
	s.respond(w, r, sess, http.StatusOK)
}

// InterruptRequest is the body of POST /sessions/{id}/interrupt.
type InterruptRequest struct {
	Event string `json:"event"`
}

func (s *Server) interrupt(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req InterruptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	event, err := runner.SanitizeInput(strings.TrimSpace(req.Event))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !sess.engine.RaiseInterrupt(event) {
		s.writeError(w, http.StatusConflict, fmt.Errorf("interrupt '%s' not accepted", event))
		return
	}
	s.respond(w, r, sess, http.StatusOK)
}

func (s *Server) getVariables(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.lookup(w, r); ok {
		s.writeJSON(w, http.StatusOK, sess.engine.Globals().Export())
	}
}

// respond waits for the run to settle and writes the session state with the
// output produced since the previous response. A session whose run has ended
// is retired after this final state is taken.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session, status int) {
	if err := sess.engine.Idle(r.Context()); err != nil {
		s.writeError(w, http.StatusGatewayTimeout, err)
		return
	}
	st := sess.state()
	if sess.engine.Status() == colloquy.StatusEnded {
		s.retire(sess, "finished")
	}
	s.writeJSON(w, status, st)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Warn("request rejected", "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrGraphNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidChoice):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAwaitingChoice), errors.Is(err, domain.ErrNotRunning),
		errors.Is(err, domain.ErrAlreadyRunning):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
