package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"whatsappmgr/internal/config"
	"whatsappmgr/internal/models"
	"whatsappmgr/internal/service"
	"whatsappmgr/pkg/transport/waha"

	"github.com/sirupsen/logrus"
)

// TestEnvironment wires a Manager to a real transport client pointed at
// a fake WhatsApp API server that records every request it handles.
type TestEnvironment struct {
	t       *testing.T
	api     *httptest.Server
	Manager *service.Manager
	Sink    *RecordingSink

	mu       sync.Mutex
	requests map[string]int
}

// RecordingSink counts notifications delivered by the Manager
type RecordingSink struct {
	mu       sync.Mutex
	statuses []models.SessionStatus
	pairings int
	messages int
}

func (s *RecordingSink) EmitStatusChange(sessionID string, status models.SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *RecordingSink) EmitPairingCode(sessionID string, code *models.PairingCodeView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairings++
}

func (s *RecordingSink) EmitNewMessage(sessionID string, msg *models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages++
}

func (s *RecordingSink) Counts() (statuses, pairings, messages int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.statuses), s.pairings, s.messages
}

// NewTestEnvironment starts the fake API server and a Manager using the
// default configuration
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{
		t:        t,
		Sink:     &RecordingSink{},
		requests: map[string]int{},
	}
	env.api = httptest.NewServer(http.HandlerFunc(env.handleAPI))
	t.Cleanup(env.api.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	transport := waha.NewClient(env.api.URL, "integration-key", 5*time.Second)
	env.Manager = service.NewManager(transport, env.Sink, logger, config.Defaults())
	return env
}

// MediaURL returns a URL on the fake API server that serves media bytes
func (e *TestEnvironment) MediaURL() string {
	return e.api.URL + "/media/file.jpg"
}

// CountRequests returns how many API requests matched the given kind:
// "start", "stop", "send", "contact", "avatar", "chat", "quoted", or
// "media"
func (e *TestEnvironment) CountRequests(kind string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requests[kind]
}

func (e *TestEnvironment) record(kind string) {
	e.mu.Lock()
	e.requests[kind]++
	e.mu.Unlock()
}

func (e *TestEnvironment) handleAPI(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case strings.HasSuffix(path, "/start"):
		e.record("start")
		writeJSON(w, map[string]string{"status": "started"})
	case strings.HasSuffix(path, "/stop"):
		e.record("stop")
		writeJSON(w, map[string]string{"status": "stopped"})
	case path == "/api/sendText":
		e.record("send")
		writeJSON(w, map[string]string{"id": "out-1"})
	case path == "/api/contacts/profile-picture":
		e.record("avatar")
		writeJSON(w, map[string]string{"profilePictureURL": e.api.URL + "/avatar.jpg"})
	case path == "/api/contacts":
		e.record("contact")
		writeJSON(w, models.Contact{
			ID:     r.URL.Query().Get("contactId"),
			Name:   "Integration Contact",
			Number: "15551230000",
		})
	case strings.HasPrefix(path, "/media/"):
		e.record("media")
		w.Write([]byte("fake-media-bytes"))
	case strings.Contains(path, "/messages/"):
		e.record("quoted")
		writeJSON(w, models.QuotedMessage{
			ID:     "q1",
			Body:   "earlier message",
			Sender: "111@c.us",
			Type:   "chat",
		})
	case strings.Contains(path, "/chats/"):
		e.record("chat")
		writeJSON(w, models.Chat{
			ID:               "777@g.us",
			Name:             "Integration Group",
			IsGroup:          true,
			ParticipantCount: 3,
		})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
