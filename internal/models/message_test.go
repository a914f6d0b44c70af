package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactGetDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		contact  Contact
		expected string
	}{
		{
			name:     "name preferred",
			contact:  Contact{ID: "111@c.us", Name: "Alice", Number: "111"},
			expected: "Alice",
		},
		{
			name:     "number when no name",
			contact:  Contact{ID: "111@c.us", Number: "111"},
			expected: "111",
		},
		{
			name:     "id as last resort",
			contact:  Contact{ID: "111@c.us"},
			expected: "111@c.us",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.contact.GetDisplayName())
		})
	}
}

func TestRawMessageIsGroupMessage(t *testing.T) {
	group := RawMessage{From: "999@g.us"}
	individual := RawMessage{From: "111@c.us"}

	assert.True(t, group.IsGroupMessage())
	assert.False(t, individual.IsGroupMessage())
}

func TestRawMessageSenderNumber(t *testing.T) {
	tests := []struct {
		from     string
		expected string
	}{
		{"111@c.us", "111"},
		{"999@g.us", "999"},
		{"raw-id", "raw-id"},
	}

	for _, tt := range tests {
		msg := RawMessage{From: tt.from}
		assert.Equal(t, tt.expected, msg.SenderNumber())
	}
}

func TestSessionStatusIsValid(t *testing.T) {
	valid := []SessionStatus{
		SessionStatusInitializing,
		SessionStatusQRGenerated,
		SessionStatusAuthenticated,
		SessionStatusReady,
		SessionStatusAuthFailure,
		SessionStatusDisconnected,
	}
	for _, status := range valid {
		assert.True(t, status.IsValid(), string(status))
	}

	assert.False(t, SessionStatus("running").IsValid())
	assert.False(t, SessionStatus("").IsValid())
}
