package service

import (
	"context"

	"whatsappmgr/internal/models"
)

// Transport is the external automation layer that owns the actual
// WhatsApp connections. It delivers lifecycle and message events back
// into the Manager and performs sends and enrichment lookups on demand.
type Transport interface {
	Initialize(ctx context.Context, sessionID string) error
	Send(ctx context.Context, sessionID, chatID, body string) error
	Destroy(ctx context.Context, sessionID string) error

	// Enrichment lookups, each independently fallible
	ResolveContact(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Contact, error)
	ResolveAvatar(ctx context.Context, sessionID, contactID string) (string, error)
	ResolveChat(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Chat, error)
	DownloadMedia(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Media, error)
	ResolveQuotedMessage(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.QuotedMessage, error)
}

// EventSink receives best-effort notifications of session state changes.
// Implementations must tolerate concurrent calls; the Manager dispatches
// notifications asynchronously and never waits for them.
type EventSink interface {
	EmitStatusChange(sessionID string, status models.SessionStatus)
	EmitPairingCode(sessionID string, code *models.PairingCodeView)
	EmitNewMessage(sessionID string, msg *models.Message)
}
