package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier only logs; used when no broker is configured
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("notifier", "log"))}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.log.Info("Notification",
		zap.String("type", string(n.Type)),
		zap.String("recipient_id", n.RecipientID.String()),
		zap.String("booking_id", n.BookingID.String()),
		zap.Any("data", n.Data),
	)
	return nil
}
