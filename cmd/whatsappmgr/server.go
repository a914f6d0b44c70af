package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "whatsappmgr/internal/errors"
	"whatsappmgr/internal/metrics"
	"whatsappmgr/internal/models"
	"whatsappmgr/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server exposes the session manager over HTTP
type Server struct {
	router  *mux.Router
	logger  *logrus.Logger
	manager *service.Manager
	server  *http.Server
}

func NewServer(manager *service.Manager, logger *logrus.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		logger:  logger,
		manager: manager,
	}

	s.router.Use(s.requestLogging)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check and metrics
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	// Transport webhook
	s.router.HandleFunc("/webhook", s.handleWebhook()).Methods(http.MethodPost)

	// Session management
	api := s.router.PathPrefix("/api/sessions").Subrouter()
	api.HandleFunc("", s.handleCreateSession()).Methods(http.MethodPost)
	api.HandleFunc("", s.handleListSessions()).Methods(http.MethodGet)
	api.HandleFunc("", s.handleDestroyAll()).Methods(http.MethodDelete)
	api.HandleFunc("/{id}", s.handleRemoveSession()).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/status", s.handleGetStatus()).Methods(http.MethodGet)
	api.HandleFunc("/{id}/qr", s.handleGetPairingCode()).Methods(http.MethodGet)
	api.HandleFunc("/{id}/qr/stats", s.handleGetPairingStats()).Methods(http.MethodGet)
	api.HandleFunc("/{id}/send", s.handleSend()).Methods(http.MethodPost)
	api.HandleFunc("/{id}/messages", s.handleQueryMessages()).Methods(http.MethodGet)
	api.HandleFunc("/{id}/messages", s.handleClearMessages()).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/messages/stats", s.handleMessageStats()).Methods(http.MethodGet)
}

func (s *Server) Start(port, readTimeoutSec, writeTimeoutSec, idleTimeoutSec int) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(readTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(writeTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(idleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting server on port %d", port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// requestLogging attaches a request id and logs method, path, and
// duration for every request
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Request handled")
	})
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		s.writeJSON(w, http.StatusOK, metrics.GetAllMetrics())
	}
}

type webhookEvent struct {
	Session string          `json:"session"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// handleWebhook ingests transport events: pairing codes, lifecycle
// transitions, and inbound messages
func (s *Server) handleWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event webhookEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			s.writeError(w, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid webhook payload"))
			return
		}
		if event.Session == "" || event.Event == "" {
			s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "webhook requires session and event"))
			return
		}

		var err error
		switch event.Event {
		case "qr":
			var payload struct {
				Code string `json:"code"`
			}
			if decodeErr := json.Unmarshal(event.Payload, &payload); decodeErr != nil || payload.Code == "" {
				s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "qr event requires a code"))
				return
			}
			err = s.manager.OnPairingCode(event.Session, payload.Code, time.Now())
		case "message":
			var raw models.RawMessage
			if decodeErr := json.Unmarshal(event.Payload, &raw); decodeErr != nil {
				s.writeError(w, apperrors.Wrap(decodeErr, apperrors.ErrCodeInvalidInput, "invalid message payload"))
				return
			}
			err = s.manager.HandleMessage(r.Context(), event.Session, &raw)
		default:
			err = s.manager.HandleLifecycleEvent(event.Session, event.Event)
		}

		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
	}
}

func (s *Server) handleCreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		summary, err := s.manager.CreateSession(req.ID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, summary)
	}
}

func (s *Server) handleListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"sessions": s.manager.ListSessions(),
		})
	}
}

func (s *Server) handleDestroyAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		destroyed := s.manager.DestroyAll(r.Context())
		s.writeJSON(w, http.StatusOK, map[string]int{"destroyed": destroyed})
	}
}

func (s *Server) handleRemoveSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := s.manager.RemoveSession(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

func (s *Server) handleGetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		status, err := s.manager.GetStatus(id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":     id,
			"status": status,
		})
	}
}

func (s *Server) handleGetPairingCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		view, err := s.manager.GetPairingCode(id, time.Now())
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) handleGetPairingStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		stats, err := s.manager.GetPairingStats(id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) handleSend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req struct {
			Recipient string `json:"recipient"`
			Body      string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
			return
		}

		result, err := s.manager.Send(r.Context(), id, req.Recipient, req.Body)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleQueryMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		filter, err := parseMessageFilter(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		result, err := s.manager.Query(id, filter)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleClearMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		removed, err := s.manager.ClearMessages(id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
	}
}

func (s *Server) handleMessageStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		stats, err := s.manager.Stats(id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, stats)
	}
}

func parseMessageFilter(r *http.Request) (service.MessageFilter, error) {
	query := r.URL.Query()
	filter := service.MessageFilter{
		From: query.Get("from"),
		Type: query.Get("type"),
	}

	if v := query.Get("lastHours"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours < 0 {
			return filter, apperrors.New(apperrors.ErrCodeInvalidInput, "lastHours must be a non-negative integer")
		}
		filter.LastHours = hours
	}
	if v := query.Get("onlyGroups"); v != "" {
		onlyGroups, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.New(apperrors.ErrCodeInvalidInput, "onlyGroups must be a boolean")
		}
		filter.OnlyGroups = &onlyGroups
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, apperrors.New(apperrors.ErrCodeInvalidInput, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}

	return filter, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeAlreadyExists, apperrors.ErrCodeUnavailable:
		status = http.StatusConflict
	case apperrors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.ErrCodeTransportInit, apperrors.ErrCodeTransportSend, apperrors.ErrCodeTransportDestroy:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed")
	}

	s.writeJSON(w, status, map[string]interface{}{
		"code":  code,
		"error": err.Error(),
	})
}
