package services

import (
	"errors"

	"project/backend/models"

	"gorm.io/gorm"
)

// VoteService records per-user helpfulness votes and keeps the
// denormalized counters on the review in step with the vote rows.
// Counter arithmetic always happens in the same transaction as the
// vote write, as an in-database increment, so a concurrent flip can
// never leave a counter disagreeing with the rows.
type VoteService struct {
	DB *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{DB: db}
}

func counterColumn(isHelpful bool) string {
	if isHelpful {
		return "helpful_count"
	}
	return "not_helpful_count"
}

// VoteReview casts or flips a vote. Repeating the same vote is a
// no-op; flipping moves one unit from the old counter to the new one.
func (s *VoteService) VoteReview(reviewID, userID uint, isHelpful bool) (*models.ReviewVote, error) {
	var review models.Review
	if err := s.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	var vote models.ReviewVote
	err := s.DB.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&vote).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// First vote by this user.
		vote = models.ReviewVote{ReviewID: reviewID, UserID: userID, IsHelpful: isHelpful}
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			col := counterColumn(isHelpful)
			return tx.Model(&models.Review{}).Where("id = ?", reviewID).
				UpdateColumn(col, gorm.Expr(col+" + 1")).Error
		})
		if err != nil {
			return nil, err
		}
		return &vote, nil
	}

	if vote.IsHelpful == isHelpful {
		// Idempotent: same vote again changes nothing.
		return &vote, nil
	}

	// Flip: vote row and both counter deltas commit as one unit.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&vote).UpdateColumn("is_helpful", isHelpful).Error; err != nil {
			return err
		}
		newCol := counterColumn(isHelpful)
		oldCol := counterColumn(!isHelpful)
		return tx.Model(&models.Review{}).Where("id = ?", reviewID).
			UpdateColumns(map[string]interface{}{
				newCol: gorm.Expr(newCol + " + 1"),
				oldCol: gorm.Expr(oldCol + " - 1"),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	vote.IsHelpful = isHelpful
	return &vote, nil
}

// RemoveVote deletes the user's vote and decrements the counter the
// vote was feeding.
func (s *VoteService) RemoveVote(reviewID, userID uint) error {
	var vote models.ReviewVote
	err := s.DB.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVoteNotFound
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&vote).Error; err != nil {
			return err
		}
		col := counterColumn(vote.IsHelpful)
		return tx.Model(&models.Review{}).Where("id = ?", reviewID).
			UpdateColumn(col, gorm.Expr(col+" - 1")).Error
	})
}

// ReconcileCounters recomputes both counters from the vote rows. The
// incremental path keeps them correct on its own; this is the repair
// tool for counters damaged outside it (manual fixes, migrations).
func (s *VoteService) ReconcileCounters(reviewID uint) (*models.Review, error) {
	var review models.Review
	if err := s.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var helpful, notHelpful int64
		if err := tx.Model(&models.ReviewVote{}).
			Where("review_id = ? AND is_helpful = ?", reviewID, true).
			Count(&helpful).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ReviewVote{}).
			Where("review_id = ? AND is_helpful = ?", reviewID, false).
			Count(&notHelpful).Error; err != nil {
			return err
		}
		review.HelpfulCount = int(helpful)
		review.NotHelpfulCount = int(notHelpful)
		return tx.Model(&models.Review{}).Where("id = ?", reviewID).
			UpdateColumns(map[string]interface{}{
				"helpful_count":     helpful,
				"not_helpful_count": notHelpful,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}
