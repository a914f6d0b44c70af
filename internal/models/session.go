package models

import (
	"time"
)

// SessionStatus represents the current lifecycle state of a session
type SessionStatus string

const (
	SessionStatusInitializing  SessionStatus = "initializing"
	SessionStatusQRGenerated   SessionStatus = "qr_generated"
	SessionStatusAuthenticated SessionStatus = "authenticated"
	SessionStatusReady         SessionStatus = "ready"
	SessionStatusAuthFailure   SessionStatus = "auth_failure"
	SessionStatusDisconnected  SessionStatus = "disconnected"
)

// IsValid reports whether s is one of the known lifecycle statuses
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusInitializing, SessionStatusQRGenerated, SessionStatusAuthenticated,
		SessionStatusReady, SessionStatusAuthFailure, SessionStatusDisconnected:
		return true
	}
	return false
}

// PairingRecord holds the current pairing code for a session.
// A session has at most one record; it is cleared when the session
// reaches ready.
type PairingRecord struct {
	Raw         string    `json:"raw"`
	Rendered    string    `json:"rendered"`
	Hash        string    `json:"-"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// PairingCodeView is a PairingRecord plus expiry computed at read time
type PairingCodeView struct {
	Raw             string    `json:"raw"`
	Rendered        string    `json:"rendered"`
	GeneratedAt     time.Time `json:"generatedAt"`
	AgeMs           int64     `json:"ageMs"`
	IsExpired       bool      `json:"isExpired"`
	TimeRemainingMs int64     `json:"timeRemainingMs"`
}

// PairingStats is a diagnostic snapshot of a session's pairing state
type PairingStats struct {
	HasCode       bool          `json:"hasCode"`
	GeneratedAt   *time.Time    `json:"generatedAt,omitempty"`
	HasDedupState bool          `json:"hasDedupState"`
	Status        SessionStatus `json:"status"`
}

// SessionSummary is the per-session entry returned by ListSessions
type SessionSummary struct {
	ID             string        `json:"id"`
	Status         SessionStatus `json:"status"`
	HasPairingCode bool          `json:"hasPairingCode"`
	MessageCount   int           `json:"messageCount"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// SendResult confirms a delivered outbound message
type SendResult struct {
	Recipient string    `json:"recipient"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}
