package models

import (
	"strings"
	"time"

	"whatsappmgr/internal/constants"
)

// Contact represents the resolved sender of a message
type Contact struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Number      string  `json:"number"`
	IsMyContact bool    `json:"isMyContact"`
	IsGroup     bool    `json:"isGroup"`
	IsWAContact bool    `json:"isWAContact"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// GetDisplayName returns the best available display name for the contact
func (c *Contact) GetDisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Number != "" {
		return c.Number
	}
	return c.ID
}

// Chat represents group chat metadata, present only for group messages
type Chat struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	IsGroup          bool      `json:"isGroup"`
	ParticipantCount int       `json:"participantCount"`
	Description      string    `json:"description,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// Media holds a downloaded media payload
type Media struct {
	MimeType string `json:"mimetype"`
	Filename string `json:"filename"`
	Data     string `json:"data"`
	Size     int64  `json:"size"`
}

// Location holds structured coordinates for location messages
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description,omitempty"`
}

// QuotedMessage is a resolved reference to a replied-to message
type QuotedMessage struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Sender    string    `json:"sender"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is a fully enriched inbound message. The core fields (ID,
// Sender, Recipient, Body, Type, Timestamp) are always present;
// enrichment sub-fields are best-effort and may be absent when the
// corresponding resolution step failed.
type Message struct {
	ID              string         `json:"id"`
	Sender          string         `json:"sender"`
	Recipient       string         `json:"recipient"`
	Body            string         `json:"body"`
	Type            string         `json:"type"`
	Timestamp       time.Time      `json:"timestamp"`
	ReceivedAt      time.Time      `json:"receivedAt"`
	IsGroup         bool           `json:"isGroup"`
	HasMedia        bool           `json:"hasMedia"`
	Contact         Contact        `json:"contact"`
	Chat            *Chat          `json:"chat,omitempty"`
	Media           *Media         `json:"media,omitempty"`
	MediaError      string         `json:"mediaError,omitempty"`
	Location        *Location      `json:"location,omitempty"`
	QuotedMessage   *QuotedMessage `json:"quotedMessage,omitempty"`
	IsForwarded     bool           `json:"isForwarded"`
	ForwardingScore int            `json:"forwardingScore"`
	IsStarred       bool           `json:"isStarred"`
	IsStatus        bool           `json:"isStatus"`
	IsBroadcast     bool           `json:"isBroadcast"`
	FromMe          bool           `json:"fromMe"`
	DeviceType      string         `json:"deviceType,omitempty"`
}

// RawMessage is an inbound message event as delivered by the transport,
// before enrichment
type RawMessage struct {
	ID              string    `json:"id"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	Body            string    `json:"body"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	NotifyName      string    `json:"notifyName,omitempty"`
	HasMedia        bool      `json:"hasMedia"`
	MediaURL        string    `json:"mediaUrl,omitempty"`
	MediaMimeType   string    `json:"mediaMimeType,omitempty"`
	MediaFilename   string    `json:"mediaFilename,omitempty"`
	Location        *Location `json:"location,omitempty"`
	QuotedMessageID string    `json:"quotedMessageId,omitempty"`
	IsForwarded     bool      `json:"isForwarded"`
	ForwardingScore int       `json:"forwardingScore"`
	IsStarred       bool      `json:"isStarred"`
	IsStatus        bool      `json:"isStatus"`
	IsBroadcast     bool      `json:"isBroadcast"`
	FromMe          bool      `json:"fromMe"`
	DeviceType      string    `json:"deviceType,omitempty"`
}

// IsGroupMessage returns true if the message originates from a group chat
func (r *RawMessage) IsGroupMessage() bool {
	return strings.HasSuffix(r.From, constants.GroupChatIDSuffix)
}

// SenderNumber extracts the bare phone number from the sender chat ID
func (r *RawMessage) SenderNumber() string {
	if idx := strings.Index(r.From, "@"); idx >= 0 {
		return r.From[:idx]
	}
	return r.From
}
