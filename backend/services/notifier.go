package services

import (
	"log"

	"project/backend/models"
)

// Notifier is told about moderation decisions so the review author can
// be informed. Delivery belongs to the notification service; failures
// there must never fail the moderation itself, so the interface has no
// error return.
type Notifier interface {
	ModerationDecided(review *models.Review, action string, reason string)
}

// NopNotifier is the default when no notification backend is wired.
type NopNotifier struct{}

func (NopNotifier) ModerationDecided(*models.Review, string, string) {}

// LogNotifier writes decisions to the application log. Stands in for
// the email pipeline in local and test environments.
type LogNotifier struct {
	Logger *log.Logger
}

func (n *LogNotifier) ModerationDecided(review *models.Review, action, reason string) {
	if reason != "" {
		n.Logger.Printf("review %d %sd for user %d: %s", review.ID, action, review.UserID, reason)
		return
	}
	n.Logger.Printf("review %d %sd for user %d", review.ID, action, review.UserID)
}
