package service

import (
	"context"
	"sync"

	"whatsappmgr/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock transport
type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Initialize(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *mockTransport) Send(ctx context.Context, sessionID, chatID, body string) error {
	args := m.Called(ctx, sessionID, chatID, body)
	return args.Error(0)
}

func (m *mockTransport) Destroy(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *mockTransport) ResolveContact(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Contact, error) {
	args := m.Called(ctx, sessionID, raw)
	if contact := args.Get(0); contact != nil {
		return contact.(*models.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransport) ResolveAvatar(ctx context.Context, sessionID, contactID string) (string, error) {
	args := m.Called(ctx, sessionID, contactID)
	return args.String(0), args.Error(1)
}

func (m *mockTransport) ResolveChat(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Chat, error) {
	args := m.Called(ctx, sessionID, raw)
	if chat := args.Get(0); chat != nil {
		return chat.(*models.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransport) DownloadMedia(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Media, error) {
	args := m.Called(ctx, sessionID, raw)
	if media := args.Get(0); media != nil {
		return media.(*models.Media), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTransport) ResolveQuotedMessage(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.QuotedMessage, error) {
	args := m.Called(ctx, sessionID, raw)
	if quoted := args.Get(0); quoted != nil {
		return quoted.(*models.QuotedMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubTransport is a no-expectation transport for tests that only
// exercise state handling. Enrichment lookups succeed with empty data.
type stubTransport struct{}

func (stubTransport) Initialize(ctx context.Context, sessionID string) error { return nil }
func (stubTransport) Send(ctx context.Context, sessionID, chatID, body string) error {
	return nil
}
func (stubTransport) Destroy(ctx context.Context, sessionID string) error { return nil }
func (stubTransport) ResolveContact(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Contact, error) {
	return &models.Contact{ID: raw.From, Number: raw.SenderNumber()}, nil
}
func (stubTransport) ResolveAvatar(ctx context.Context, sessionID, contactID string) (string, error) {
	return "", nil
}
func (stubTransport) ResolveChat(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Chat, error) {
	return &models.Chat{ID: raw.From, IsGroup: true}, nil
}
func (stubTransport) DownloadMedia(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Media, error) {
	return &models.Media{MimeType: raw.MediaMimeType}, nil
}
func (stubTransport) ResolveQuotedMessage(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.QuotedMessage, error) {
	return &models.QuotedMessage{ID: raw.QuotedMessageID}, nil
}

// recordingSink captures notifications for assertions. Notifications
// are dispatched on goroutines, so all access is mutex-guarded and
// tests should poll with assert.Eventually.
type recordingSink struct {
	mu            sync.Mutex
	statusChanges []models.SessionStatus
	pairingCodes  []*models.PairingCodeView
	messages      []*models.Message
}

func (r *recordingSink) EmitStatusChange(sessionID string, status models.SessionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusChanges = append(r.statusChanges, status)
}

func (r *recordingSink) EmitPairingCode(sessionID string, code *models.PairingCodeView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairingCodes = append(r.pairingCodes, code)
}

func (r *recordingSink) EmitNewMessage(sessionID string, msg *models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingSink) statusCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statusChanges)
}

func (r *recordingSink) pairingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pairingCodes)
}

func (r *recordingSink) messageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *recordingSink) lastStatus() models.SessionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statusChanges) == 0 {
		return ""
	}
	return r.statusChanges[len(r.statusChanges)-1]
}
