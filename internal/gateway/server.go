// Package gateway is the chat-facing HTTP surface: one conversational
// endpoint plus the operator and observability endpoints.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mobility-intake/internal/collector"
	commonerrors "mobility-intake/internal/common/errors"
	"mobility-intake/internal/common/logger"
	"mobility-intake/internal/common/observability"
	"mobility-intake/internal/models"
	"mobility-intake/internal/orchestrator"
	"mobility-intake/internal/routing"
)

const routeGuidance = "I can help with two things:\n" +
	"- **Compensation**: predicting a relocation compensation package\n" +
	"- **Policy**: analyzing visa and assignment policy requirements\n\n" +
	"Which would you like to start with?"

// Intake is the collector capability the gateway drives.
type Intake interface {
	StartRoute(ctx context.Context, sessionID, route string) (*collector.TurnResult, error)
	HandleTurn(ctx context.Context, sessionID, message string) (*collector.TurnResult, error)
	AttachDocument(ctx context.Context, sessionID string, doc models.Document) error
}

// Predictor fulfills a completed field set and reports service status.
type Predictor interface {
	Fulfill(ctx context.Context, route string, fields map[string]collector.Value, docs []models.Document) (*models.PredictionResult, error)
	Status(ctx context.Context) orchestrator.ServiceStatus
}

// Renderer turns prediction results into reply text.
type Renderer func(*models.PredictionResult) models.FormattedResult

// Server handles the chat API. Turns are serialized per session: a
// turn's processing fully completes before the session's next turn is
// accepted.
type Server struct {
	intake    Intake
	predictor Predictor
	render    Renderer
	logger    logger.Logger
	obs       *observability.Observability

	locks sync.Map // session ID -> *sync.Mutex
}

func NewServer(intake Intake, predictor Predictor, render Renderer, log logger.Logger) *Server {
	return &Server{
		intake:    intake,
		predictor: predictor,
		render:    render,
		logger:    log.With(map[string]interface{}{"component": "gateway"}),
	}
}

// WithObservability attaches the otel meter recorders.
func (s *Server) WithObservability(obs *observability.Observability) *Server {
	s.obs = obs
	return s
}

// Handler builds the HTTP mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /documents", s.handleDocument)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Route     string `json:"route,omitempty"`
	Message   string `json:"message,omitempty"`
}

type chatResponse struct {
	SessionID  string   `json:"session_id"`
	Route      string   `json:"route,omitempty"`
	State      string   `json:"state,omitempty"`
	Reply      string   `json:"reply"`
	Missing    []string `json:"missing_fields,omitempty"`
	Provenance string   `json:"provenance,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Route == "" && req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message or route required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := s.lockSession(sessionID)
	defer unlock()

	ctx := r.Context()
	start := time.Now()

	// An explicit route switches (or starts) the collection.
	if req.Route != "" {
		res, err := s.intake.StartRoute(ctx, sessionID, req.Route)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		if req.Message == "" {
			s.writeJSON(w, http.StatusOK, turnToResponse(sessionID, res))
			return
		}
	}

	res, err := s.intake.HandleTurn(ctx, sessionID, req.Message)
	if errors.Is(err, collector.ErrNoActiveRoute) {
		res, err = s.startDetectedRoute(ctx, sessionID, req.Message)
		if err == nil && res == nil {
			s.writeJSON(w, http.StatusOK, chatResponse{SessionID: sessionID, Reply: routeGuidance})
			return
		}
	}
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.recordTurn(ctx, res, start)

	if res.State != collector.StateComplete {
		s.writeJSON(w, http.StatusOK, turnToResponse(sessionID, res))
		return
	}

	// The collector tore the session down on completion; its turn lock
	// goes with it, or the map grows one entry per session ever seen.
	defer s.locks.Delete(sessionID)

	prediction, err := s.predictor.Fulfill(ctx, res.Route, res.Fields, res.Documents)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	formatted := s.render(prediction)
	s.writeJSON(w, http.StatusOK, chatResponse{
		SessionID:  sessionID,
		Route:      res.Route,
		State:      string(res.State),
		Reply:      formatted.Text,
		Provenance: string(formatted.Provenance),
	})
}

// startDetectedRoute runs keyword detection on a message that arrived
// with no active route. Returns (nil, nil) when no route wins and the
// caller should reply with guidance.
func (s *Server) startDetectedRoute(ctx context.Context, sessionID, message string) (*collector.TurnResult, error) {
	route := routing.Detect(message)
	if route == "" {
		return nil, nil
	}
	if _, err := s.intake.StartRoute(ctx, sessionID, route); err != nil {
		return nil, err
	}
	return s.intake.HandleTurn(ctx, sessionID, message)
}

type documentRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" || req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "session_id and text required")
		return
	}

	unlock := s.lockSession(req.SessionID)
	defer unlock()

	err := s.intake.AttachDocument(r.Context(), req.SessionID, models.Document{Name: req.Name, Text: req.Text})
	if errors.Is(err, collector.ErrNoActiveRoute) {
		s.writeError(w, http.StatusConflict, "no active route for session")
		return
	}
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "attached"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.predictor.Status(r.Context()))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func turnToResponse(sessionID string, res *collector.TurnResult) chatResponse {
	return chatResponse{
		SessionID: sessionID,
		Route:     res.Route,
		State:     string(res.State),
		Reply:     res.Reply,
		Missing:   res.Missing,
	}
}

func (s *Server) recordTurn(ctx context.Context, res *collector.TurnResult, start time.Time) {
	if s.obs == nil {
		return
	}
	s.obs.RecordTurnProcessed(ctx, res.Route, string(res.State))
	s.obs.RecordTurnDuration(ctx, time.Since(start), res.Route)
}

// lockSession serializes turns for one session without blocking others.
func (s *Server) lockSession(sessionID string) func() {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var cfgErr *commonerrors.ConfigError
	if errors.As(err, &cfgErr) {
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": cfgErr})
		return
	}

	var stdErr *commonerrors.StandardError
	if errors.As(err, &stdErr) {
		s.logger.WithError(err).Error("request failed", nil)
		s.writeJSON(w, http.StatusBadGateway, map[string]interface{}{"error": stdErr})
		return
	}

	s.logger.WithError(err).Error("request failed", nil)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("response encoding failed", nil)
	}
}
