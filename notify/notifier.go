package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("message has no recipient")

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier only logs the confirmation. It is used when no transport is
// configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	n.logger.Info("booking confirmation",
		zap.String("booking_id", msg.BookingID.String()),
		zap.String("event_id", msg.EventID.String()),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
