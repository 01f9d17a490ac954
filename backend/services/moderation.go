package services

import (
	"errors"
	"time"

	"project/backend/models"

	"gorm.io/gorm"
)

// Moderation actions.
const (
	ModerationActionApprove = "approve"
	ModerationActionReject  = "reject"
	ModerationActionFlag    = "flag"
)

// ModerationService drives admin status transitions. Approval is
// allowed from any state (a review edited after approval drops back to
// pending and can be re-approved); reject and flag only make sense on
// reviews that are still visible or queued.
type ModerationService struct {
	DB       *gorm.DB
	Reviews  *ReviewService
	Notifier Notifier

	now func() time.Time
}

func NewModerationService(db *gorm.DB, reviews *ReviewService, notifier Notifier) *ModerationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ModerationService{DB: db, Reviews: reviews, Notifier: notifier, now: time.Now}
}

func transitionAllowed(action, from string) bool {
	switch action {
	case ModerationActionApprove:
		return true
	case ModerationActionReject:
		return from == models.ReviewStatusPending ||
			from == models.ReviewStatusApproved ||
			from == models.ReviewStatusFlagged
	case ModerationActionFlag:
		return from == models.ReviewStatusPending ||
			from == models.ReviewStatusApproved
	}
	return false
}

func actionStatus(action string) string {
	switch action {
	case ModerationActionApprove:
		return models.ReviewStatusApproved
	case ModerationActionReject:
		return models.ReviewStatusRejected
	case ModerationActionFlag:
		return models.ReviewStatusFlagged
	}
	return ""
}

func (s *ModerationService) ApproveReview(reviewID, adminID uint) (*models.Review, error) {
	return s.moderate(reviewID, ModerationActionApprove, adminID, "")
}

func (s *ModerationService) RejectReview(reviewID, adminID uint, reason string) (*models.Review, error) {
	return s.moderate(reviewID, ModerationActionReject, adminID, reason)
}

func (s *ModerationService) FlagReview(reviewID, adminID uint, reason string) (*models.Review, error) {
	return s.moderate(reviewID, ModerationActionFlag, adminID, reason)
}

// Moderate applies one named action; used by the single-review
// moderation endpoint.
func (s *ModerationService) Moderate(reviewID uint, action string, adminID uint, reason string) (*models.Review, error) {
	if actionStatus(action) == "" {
		return nil, newValidationError("Unknown moderation action %q", action)
	}
	return s.moderate(reviewID, action, adminID, reason)
}

func (s *ModerationService) moderate(reviewID uint, action string, adminID uint, reason string) (*models.Review, error) {
	var review models.Review
	if err := s.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if !transitionAllowed(action, review.Status) {
		return nil, newValidationError("Cannot %s a review in status %q", action, review.Status)
	}

	now := s.now()
	review.Status = actionStatus(action)
	review.ModeratedByID = &adminID
	review.ModeratedAt = &now
	if action == ModerationActionReject || action == ModerationActionFlag {
		review.RejectionReason = reason
	}

	if err := s.DB.Save(&review).Error; err != nil {
		return nil, err
	}

	// Fire-and-forget; the notifier owns delivery and its failures.
	s.Notifier.ModerationDecided(&review, action, reason)

	return &review, nil
}

// Bulk moderation outcomes per review id.
const (
	BulkOutcomeApplied           = "applied"
	BulkOutcomeNotFound          = "not_found"
	BulkOutcomeInvalidTransition = "invalid_transition"
)

type BulkModerationResult struct {
	ReviewID uint   `json:"review_id"`
	Outcome  string `json:"outcome"`
}

// BulkModerate applies one action to every id and reports the outcome
// per id, so callers can see partial application instead of missing
// ids being skipped silently.
func (s *ModerationService) BulkModerate(reviewIDs []uint, action string, adminID uint, reason string) ([]BulkModerationResult, error) {
	if actionStatus(action) == "" {
		return nil, newValidationError("Unknown moderation action %q", action)
	}

	results := make([]BulkModerationResult, 0, len(reviewIDs))
	for _, id := range reviewIDs {
		_, err := s.moderate(id, action, adminID, reason)
		switch {
		case err == nil:
			results = append(results, BulkModerationResult{ReviewID: id, Outcome: BulkOutcomeApplied})
		case errors.Is(err, ErrReviewNotFound):
			results = append(results, BulkModerationResult{ReviewID: id, Outcome: BulkOutcomeNotFound})
		default:
			var ve *ValidationError
			if errors.As(err, &ve) {
				results = append(results, BulkModerationResult{ReviewID: id, Outcome: BulkOutcomeInvalidTransition})
				continue
			}
			return nil, err
		}
	}

	return results, nil
}

// GetPendingReviews returns the moderation queue, oldest first.
func (s *ModerationService) GetPendingReviews(page, limit int) ([]models.Review, *Pagination, error) {
	return s.Reviews.GetReviews(ReviewFilters{
		Status: models.ReviewStatusPending,
		Sort:   "oldest",
		Page:   page,
		Limit:  limit,
	})
}
