package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
)

// Sender delivers a single notification to an external channel.
type Sender interface {
	Send(ctx context.Context, notification domain.Notification) error
}

// LogSender writes notifications to the log. It is used when no webhook is
// configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, n domain.Notification) error {
	s.logger.Info("notification",
		zap.Int64("user_id", n.UserID),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
		zap.String("body", n.Body))
	return nil
}
