package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notifier delivers user-facing feedback, the toast surface of the
// storefront. Every failed cart mutation reports through it; nothing
// fails silently.
type Notifier interface {
	Notify(ctx context.Context, userID string, level Level, message string)
}

// LogNotifier writes notifications to the structured log. The web layer
// additionally returns them in the response body, so this is the sink of
// record rather than the only delivery path.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n LogNotifier) Notify(_ context.Context, userID string, level Level, message string) {
	entry := n.Log.WithFields(logrus.Fields{
		"user_id":      userID,
		"notification": true,
	})
	if level == LevelError {
		entry.Error(message)
		return
	}
	entry.Info(message)
}
