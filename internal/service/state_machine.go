package service

import (
	"whatsappmgr/internal/errors"
	"whatsappmgr/internal/metrics"
	"whatsappmgr/internal/models"

	"github.com/sirupsen/logrus"
)

// Lifecycle event names as delivered by the transport
const (
	EventAuthenticated = "authenticated"
	EventReady         = "ready"
	EventAuthFailure   = "auth_failure"
	EventDisconnected  = "disconnected"
)

var statusForEvent = map[string]models.SessionStatus{
	EventAuthenticated: models.SessionStatusAuthenticated,
	EventReady:         models.SessionStatusReady,
	EventAuthFailure:   models.SessionStatusAuthFailure,
	EventDisconnected:  models.SessionStatusDisconnected,
}

// HandleLifecycleEvent maps a transport lifecycle event onto a status
// transition
func (m *Manager) HandleLifecycleEvent(id, event string) error {
	status, ok := statusForEvent[event]
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown lifecycle event").WithContext("event", event)
	}
	return m.SetStatus(id, status)
}

// SetStatus transitions a session to the given status. Setting the
// status a session already has is a complete no-op: no notification,
// no log. Reaching ready clears the pairing record and its dedup
// bookkeeping in the same critical section.
func (m *Manager) SetStatus(id string, status models.SessionStatus) error {
	if !status.IsValid() {
		return errors.New(errors.ErrCodeInvalidInput, "invalid session status").WithContext("status", string(status))
	}

	s, err := m.registry.get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.status == status {
		s.mu.Unlock()
		return nil
	}
	previous := s.status
	s.status = status
	if status == models.SessionStatusReady {
		s.clearPairing()
	}
	s.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"session_id": id,
		"from":       previous,
		"to":         status,
	}).Info("Session status changed")
	metrics.IncrementCounter("status_transitions_total", map[string]string{"to": string(status)}, "Session status transitions applied")

	m.notifyStatus(id, status)
	return nil
}
