package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"whatsappmgr/internal/errors"
	"whatsappmgr/internal/metrics"
	"whatsappmgr/internal/models"

	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
)

// OnPairingCode ingests a raw pairing code pushed by the transport.
// The transport re-broadcasts an unchanged code every few seconds, so
// an event with the same content hash as the stored one inside the
// dedup window is discarded silently. A new or stale code replaces the
// record, notifies the sink, and drives the session to qr_generated if
// it is not there already.
func (m *Manager) OnPairingCode(id, rawPayload string, now time.Time) error {
	s, err := m.registry.get(id)
	if err != nil {
		return err
	}

	hash := hashPayload(rawPayload)

	s.mu.Lock()
	if s.lastQRHash == hash && now.Sub(s.lastQRTime) < m.dedupWindow {
		s.mu.Unlock()
		metrics.IncrementCounter("pairing_codes_deduplicated_total", nil, "Pairing code events discarded as duplicates")
		m.logger.WithField("session_id", id).Debug("Duplicate pairing code discarded")
		return nil
	}

	rendered := m.renderPairingCode(id, rawPayload)
	s.pairing = &models.PairingRecord{
		Raw:         rawPayload,
		Rendered:    rendered,
		Hash:        hash,
		GeneratedAt: now,
	}
	s.lastQRHash = hash
	s.lastQRTime = now

	transitioned := s.status != models.SessionStatusQRGenerated
	if transitioned {
		s.status = models.SessionStatusQRGenerated
	}
	view := pairingView(s.pairing, now, m.expiry)
	s.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"session_id":   id,
		"transitioned": transitioned,
	}).Info("Pairing code updated")
	metrics.IncrementCounter("pairing_codes_generated_total", nil, "Pairing code records stored")

	if transitioned {
		m.notifyStatus(id, models.SessionStatusQRGenerated)
	}
	m.notifyPairing(id, view)
	return nil
}

// GetPairingCode returns the session's current pairing record with
// expiry computed lazily from now. There is no background timer; a
// record expires purely by elapsed time at read.
func (m *Manager) GetPairingCode(id string, now time.Time) (*models.PairingCodeView, error) {
	s, err := m.registry.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pairing == nil {
		return nil, errors.New(errors.ErrCodeUnavailable, "no pairing code available").WithContext("session_id", id)
	}
	return pairingView(s.pairing, now, m.expiry), nil
}

// GetPairingStats returns a diagnostic snapshot of a session's pairing
// state without side effects
func (m *Manager) GetPairingStats(id string) (*models.PairingStats, error) {
	s, err := m.registry.get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.PairingStats{
		HasCode:       s.pairing != nil,
		HasDedupState: s.lastQRHash != "",
		Status:        s.status,
	}
	if s.pairing != nil {
		generatedAt := s.pairing.GeneratedAt
		stats.GeneratedAt = &generatedAt
	}
	return stats, nil
}

// renderPairingCode encodes the raw payload as a QR PNG, returned as a
// base64 data URL. A render failure degrades the record to raw-only.
func (m *Manager) renderPairingCode(id, rawPayload string) string {
	png, err := qrcode.Encode(rawPayload, qrcode.Medium, m.qrImageSize)
	if err != nil {
		m.logger.WithError(err).WithField("session_id", id).Warn("Failed to render pairing code")
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

func hashPayload(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func pairingView(record *models.PairingRecord, now time.Time, expiry time.Duration) *models.PairingCodeView {
	age := now.Sub(record.GeneratedAt)
	remaining := expiry - age
	if remaining < 0 {
		remaining = 0
	}
	return &models.PairingCodeView{
		Raw:             record.Raw,
		Rendered:        record.Rendered,
		GeneratedAt:     record.GeneratedAt,
		AgeMs:           age.Milliseconds(),
		IsExpired:       age > expiry,
		TimeRemainingMs: remaining.Milliseconds(),
	}
}
