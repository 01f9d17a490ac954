package services

import (
	"errors"
	"fmt"
	"math"

	"project/backend/config"
	"project/backend/models"

	"gorm.io/gorm"
)

// EligibilityService decides whether a user may submit a review for a
// course. It is read-only; all checks run against the purchase,
// catalog and progress stores.
type EligibilityService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewEligibilityService(db *gorm.DB, cfg *config.Config) *EligibilityService {
	return &EligibilityService{DB: db, Cfg: cfg}
}

type EligibilityResult struct {
	CanReview            bool   `json:"can_review"`
	Reason               string `json:"reason,omitempty"`
	CompletionPercentage int    `json:"completion_percentage"`
	HasExistingReview    bool   `json:"has_existing_review"`
}

// CanUserReview checks, in order: a completed purchase, an existing
// review (reported but not blocking), published course content, and
// the completion threshold. The returned result mirrors what the
// eligibility endpoint exposes; a non-nil error means the check itself
// could not run.
func (s *EligibilityService) CanUserReview(userID, courseID uint) (*EligibilityResult, error) {
	var purchases int64
	err := s.DB.Model(&models.Purchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.PurchaseStatusCompleted).
		Count(&purchases).Error
	if err != nil {
		return nil, err
	}
	if purchases == 0 {
		return &EligibilityResult{
			CanReview: false,
			Reason:    "You must purchase this course before reviewing it",
		}, nil
	}

	var existing int64
	err = s.DB.Model(&models.Review{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}

	var course models.Course
	if err := s.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.ActiveVersionID == nil {
		return &EligibilityResult{
			CanReview:         false,
			Reason:            "This course has no published content yet",
			HasExistingReview: existing > 0,
		}, nil
	}

	var totalChapters int64
	err = s.DB.Model(&models.Chapter{}).
		Where("version_id = ?", *course.ActiveVersionID).
		Count(&totalChapters).Error
	if err != nil {
		return nil, err
	}
	if totalChapters == 0 {
		return &EligibilityResult{
			CanReview:         false,
			Reason:            "This course has no chapters yet",
			HasExistingReview: existing > 0,
		}, nil
	}

	pct, err := s.completionPercentage(userID, *course.ActiveVersionID, totalChapters)
	if err != nil {
		return nil, err
	}

	result := &EligibilityResult{
		CompletionPercentage: pct,
		HasExistingReview:    existing > 0,
	}
	if pct < s.Cfg.ReviewMinCompletionPct {
		result.Reason = fmt.Sprintf(
			"You must complete at least %d%% of the course to leave a review (currently %d%%)",
			s.Cfg.ReviewMinCompletionPct, pct)
		return result, nil
	}

	result.CanReview = true
	return result, nil
}

// completionPercentage is computed over the active version only, so
// chapters added in later drafts never dilute the figure.
func (s *EligibilityService) completionPercentage(userID, versionID uint, totalChapters int64) (int, error) {
	var completed int64
	err := s.DB.Model(&models.ChapterProgress{}).
		Where("user_id = ? AND version_id = ?", userID, versionID).
		Count(&completed).Error
	if err != nil {
		return 0, err
	}

	return int(math.Round(float64(completed) / float64(totalChapters) * 100)), nil
}
