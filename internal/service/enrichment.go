package service

import (
	"context"
	"time"

	"whatsappmgr/internal/metrics"
	"whatsappmgr/internal/models"

	"github.com/sirupsen/logrus"
)

// enricher turns a raw transport message into a fully populated Message.
// Every resolution step is independently fallible: a failed step logs,
// leaves its sub-field absent, and never prevents the message from being
// stored. The pipeline runs once per inbound message and is not retried.
type enricher struct {
	transport Transport
	logger    *logrus.Logger
}

func newEnricher(transport Transport, logger *logrus.Logger) *enricher {
	return &enricher{
		transport: transport,
		logger:    logger,
	}
}

func (e *enricher) enrich(ctx context.Context, sessionID string, raw *models.RawMessage) *models.Message {
	msg := &models.Message{
		ID:              raw.ID,
		Sender:          raw.From,
		Recipient:       raw.To,
		Body:            raw.Body,
		Type:            raw.Type,
		Timestamp:       raw.Timestamp,
		ReceivedAt:      time.Now(),
		IsGroup:         raw.IsGroupMessage(),
		HasMedia:        raw.HasMedia,
		IsForwarded:     raw.IsForwarded,
		ForwardingScore: raw.ForwardingScore,
		IsStarred:       raw.IsStarred,
		IsStatus:        raw.IsStatus,
		IsBroadcast:     raw.IsBroadcast,
		FromMe:          raw.FromMe,
		DeviceType:      raw.DeviceType,
	}

	msg.Contact = e.resolveContact(ctx, sessionID, raw)
	e.resolveAvatar(ctx, sessionID, msg)

	if msg.IsGroup {
		e.resolveChat(ctx, sessionID, raw, msg)
	}
	if raw.HasMedia {
		e.downloadMedia(ctx, sessionID, raw, msg)
	}
	if raw.Type == "location" && raw.Location != nil {
		location := *raw.Location
		msg.Location = &location
	}
	if raw.QuotedMessageID != "" {
		e.resolveQuoted(ctx, sessionID, raw, msg)
	}

	return msg
}

// resolveContact fetches contact details, falling back to a minimal
// contact built from the raw sender id and inline notify name
func (e *enricher) resolveContact(ctx context.Context, sessionID string, raw *models.RawMessage) models.Contact {
	contact, err := e.transport.ResolveContact(ctx, sessionID, raw)
	if err == nil && contact != nil {
		return *contact
	}
	if err != nil {
		e.logEnrichmentFailure(sessionID, raw.ID, "contact", err)
	}
	return models.Contact{
		ID:     raw.From,
		Name:   raw.NotifyName,
		Number: raw.SenderNumber(),
	}
}

func (e *enricher) resolveAvatar(ctx context.Context, sessionID string, msg *models.Message) {
	avatarURL, err := e.transport.ResolveAvatar(ctx, sessionID, msg.Contact.ID)
	if err != nil {
		e.logEnrichmentFailure(sessionID, msg.ID, "avatar", err)
		return
	}
	if avatarURL != "" {
		msg.Contact.AvatarURL = &avatarURL
	}
}

// resolveChat fetches group metadata. On failure Chat stays absent even
// though IsGroup remains true; the group flag comes from the chat id
// suffix, not from this lookup.
func (e *enricher) resolveChat(ctx context.Context, sessionID string, raw *models.RawMessage, msg *models.Message) {
	chat, err := e.transport.ResolveChat(ctx, sessionID, raw)
	if err != nil {
		e.logEnrichmentFailure(sessionID, raw.ID, "chat", err)
		return
	}
	msg.Chat = chat
}

// downloadMedia fetches the media payload. On failure the message is
// still stored, carrying an error marker instead of the payload.
func (e *enricher) downloadMedia(ctx context.Context, sessionID string, raw *models.RawMessage, msg *models.Message) {
	media, err := e.transport.DownloadMedia(ctx, sessionID, raw)
	if err != nil {
		e.logEnrichmentFailure(sessionID, raw.ID, "media", err)
		msg.MediaError = err.Error()
		return
	}
	msg.Media = media
}

func (e *enricher) resolveQuoted(ctx context.Context, sessionID string, raw *models.RawMessage, msg *models.Message) {
	quoted, err := e.transport.ResolveQuotedMessage(ctx, sessionID, raw)
	if err != nil {
		e.logEnrichmentFailure(sessionID, raw.ID, "quoted", err)
		return
	}
	msg.QuotedMessage = quoted
}

func (e *enricher) logEnrichmentFailure(sessionID, messageID, step string, err error) {
	metrics.IncrementCounter("enrichment_failures_total", map[string]string{"step": step}, "Enrichment steps that failed")
	e.logger.WithError(err).WithFields(logrus.Fields{
		"session_id": sessionID,
		"message_id": messageID,
		"step":       step,
	}).Warn("Message enrichment step failed")
}
