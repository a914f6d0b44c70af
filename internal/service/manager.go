package service

import (
	"context"
	"strings"
	"time"

	"whatsappmgr/internal/constants"
	"whatsappmgr/internal/errors"
	"whatsappmgr/internal/metrics"
	"whatsappmgr/internal/models"

	"github.com/sirupsen/logrus"
)

// Manager is the facade over the session registry, state machine,
// pairing controller, and per-session message stores. All public
// operations are addressed by session id.
type Manager struct {
	registry  *registry
	transport Transport
	sink      EventSink
	enricher  *enricher
	logger    *logrus.Logger

	dedupWindow       time.Duration
	expiry            time.Duration
	qrImageSize       int
	storeCapacity     int
	defaultQueryLimit int
	transportTimeout  time.Duration
}

// NewManager creates a session manager wired to the given transport and
// event sink. The sink may be nil, in which case notifications are
// dropped.
func NewManager(transport Transport, sink EventSink, logger *logrus.Logger, cfg *models.Config) *Manager {
	return &Manager{
		registry:          newRegistry(),
		transport:         transport,
		sink:              sink,
		enricher:          newEnricher(transport, logger),
		logger:            logger,
		dedupWindow:       time.Duration(cfg.Pairing.DedupWindowMs) * time.Millisecond,
		expiry:            time.Duration(cfg.Pairing.ExpiryMs) * time.Millisecond,
		qrImageSize:       cfg.Pairing.QRImageSize,
		storeCapacity:     cfg.Store.Capacity,
		defaultQueryLimit: cfg.Store.DefaultQueryLimit,
		transportTimeout:  time.Duration(constants.DefaultTransportInitTimeoutSec) * time.Second,
	}
}

// CreateSession registers a new session with status initializing and
// asks the transport to bring up a connection for it. Fails with
// ALREADY_EXISTS if the id is taken.
func (m *Manager) CreateSession(id string) (*models.SessionSummary, error) {
	if id == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "session id cannot be empty")
	}

	s, err := m.registry.create(id, m.storeCapacity)
	if err != nil {
		return nil, err
	}

	m.logger.WithField("session_id", id).Info("Session created")
	metrics.IncrementCounter("sessions_created_total", nil, "Total sessions created")
	metrics.SetGauge("sessions_active", float64(m.registry.count()), nil, "Currently registered sessions")

	m.notifyStatus(id, models.SessionStatusInitializing)

	// Transport initialization runs in the background; its lifecycle
	// events will drive the session's status from here on.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.transportTimeout)
		defer cancel()
		if err := m.transport.Initialize(ctx, id); err != nil {
			m.logger.WithError(err).WithField("session_id", id).Error("Transport initialization failed")
		}
	}()

	summary := s.summary()
	return &summary, nil
}

// RemoveSession tears down the transport connection and deletes all
// session state. The teardown error is surfaced, but the session is
// removed regardless.
func (m *Manager) RemoveSession(ctx context.Context, id string) error {
	s, err := m.registry.remove(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.clearPairing()
	s.store.clear()
	s.mu.Unlock()

	m.logger.WithField("session_id", id).Info("Session removed")
	metrics.IncrementCounter("sessions_removed_total", nil, "Total sessions removed")
	metrics.SetGauge("sessions_active", float64(m.registry.count()), nil, "Currently registered sessions")

	if err := m.transport.Destroy(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrCodeTransportDestroy, "transport teardown failed").WithContext("session_id", id)
	}
	return nil
}

// ListSessions returns a snapshot of every live session
func (m *Manager) ListSessions() []models.SessionSummary {
	sessions := m.registry.list()
	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, s.summary())
	}
	return summaries
}

// DestroyAll tears down every session best-effort. Individual transport
// failures are logged and counted but do not abort the remaining
// teardowns. The registry is empty afterward.
func (m *Manager) DestroyAll(ctx context.Context) int {
	sessions := m.registry.drain()
	failures := 0
	for _, s := range sessions {
		if err := m.transport.Destroy(ctx, s.id); err != nil {
			failures++
			m.logger.WithError(err).WithField("session_id", s.id).Error("Transport teardown failed during shutdown")
		}
	}

	m.logger.WithFields(logrus.Fields{
		"sessions": len(sessions),
		"failures": failures,
	}).Info("All sessions destroyed")
	metrics.SetGauge("sessions_active", 0, nil, "Currently registered sessions")
	return len(sessions)
}

// GetStatus returns the current lifecycle status of a session
func (m *Manager) GetStatus(id string) (models.SessionStatus, error) {
	s, err := m.registry.get(id)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, nil
}

// Send delivers a text message through the transport. A recipient
// without a domain marker gets the default chat suffix appended.
func (m *Manager) Send(ctx context.Context, id, recipient, body string) (*models.SendResult, error) {
	if _, err := m.registry.get(id); err != nil {
		return nil, err
	}
	if recipient == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "recipient cannot be empty")
	}

	chatID := recipient
	if !strings.Contains(chatID, "@") {
		chatID += constants.DefaultChatIDSuffix
	}

	if err := m.transport.Send(ctx, id, chatID, body); err != nil {
		metrics.IncrementCounter("messages_send_failed_total", nil, "Outbound sends that failed at the transport")
		return nil, errors.Wrap(err, errors.ErrCodeTransportSend, "transport send failed").WithContext("session_id", id)
	}

	metrics.IncrementCounter("messages_sent_total", nil, "Outbound messages sent")
	return &models.SendResult{
		Recipient: chatID,
		Body:      body,
		Timestamp: time.Now(),
	}, nil
}

// HandleMessage runs the enrichment pipeline for an inbound raw message
// and appends the result to the session's store. Enrichment failures
// degrade the message but never reject it.
func (m *Manager) HandleMessage(ctx context.Context, id string, raw *models.RawMessage) error {
	s, err := m.registry.get(id)
	if err != nil {
		return err
	}

	// Enrich outside the session lock so a slow media download never
	// stalls status transitions or queries on this session.
	msg := m.enricher.enrich(ctx, id, raw)

	s.mu.Lock()
	s.store.append(msg)
	s.mu.Unlock()

	metrics.IncrementCounter("messages_ingested_total", nil, "Inbound messages stored")
	m.notifyMessage(id, msg)
	return nil
}

// Query runs a filtered, sorted, truncated read over a session's
// message store
func (m *Manager) Query(id string, filter MessageFilter) (*QueryResult, error) {
	s, err := m.registry.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.store.query(filter, time.Now(), m.defaultQueryLimit)
	return &result, nil
}

// Stats returns aggregate statistics for a session's message store
func (m *Manager) Stats(id string) (*StoreStats, error) {
	s, err := m.registry.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.store.stats(time.Now())
	return &stats, nil
}

// ClearMessages empties a session's message store and returns the
// number of messages removed
func (m *Manager) ClearMessages(id string) (int, error) {
	s, err := m.registry.get(id)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	removed := s.store.clear()
	s.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"session_id": id,
		"removed":    removed,
	}).Info("Message store cleared")
	return removed, nil
}

// Notification dispatch is fire-and-forget: a slow or panicking sink
// never blocks or unwinds the component that triggered it.

func (m *Manager) notifyStatus(id string, status models.SessionStatus) {
	if m.sink == nil {
		return
	}
	go func() {
		defer m.recoverNotify(id, "status")
		m.sink.EmitStatusChange(id, status)
	}()
}

func (m *Manager) notifyPairing(id string, view *models.PairingCodeView) {
	if m.sink == nil {
		return
	}
	go func() {
		defer m.recoverNotify(id, "pairing")
		m.sink.EmitPairingCode(id, view)
	}()
}

func (m *Manager) notifyMessage(id string, msg *models.Message) {
	if m.sink == nil {
		return
	}
	go func() {
		defer m.recoverNotify(id, "message")
		m.sink.EmitNewMessage(id, msg)
	}()
}

func (m *Manager) recoverNotify(id, kind string) {
	if r := recover(); r != nil {
		metrics.IncrementCounter("notifications_failed_total", map[string]string{"kind": kind}, "Event sink notifications that panicked")
		m.logger.WithFields(logrus.Fields{
			"session_id": id,
			"kind":       kind,
			"panic":      r,
		}).Error("Event sink notification panicked")
	}
}
