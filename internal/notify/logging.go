package notify

import (
	"whatsappmgr/internal/models"

	"github.com/sirupsen/logrus"
)

// LogSink is an EventSink that writes every notification to the
// application log. It is the default sink when no push channel is
// configured.
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink creates a logging event sink
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) EmitStatusChange(sessionID string, status models.SessionStatus) {
	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"status":     status,
	}).Info("Session status notification")
}

func (s *LogSink) EmitPairingCode(sessionID string, code *models.PairingCodeView) {
	s.logger.WithFields(logrus.Fields{
		"session_id":   sessionID,
		"generated_at": code.GeneratedAt,
		"expired":      code.IsExpired,
	}).Info("Pairing code notification")
}

func (s *LogSink) EmitNewMessage(sessionID string, msg *models.Message) {
	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"message_id": msg.ID,
		"type":       msg.Type,
		"group":      msg.IsGroup,
	}).Info("New message notification")
}
