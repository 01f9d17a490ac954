package services

import (
	"errors"
	"math"
	"time"
	"unicode/utf8"

	"project/backend/config"
	"project/backend/models"

	"gorm.io/gorm"
)

// ReviewService owns the review lifecycle: creation behind the
// eligibility gate, owner edits within the edit window, deletion, and
// the public listing/stats reads.
type ReviewService struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Eligibility *EligibilityService

	now func() time.Time
}

func NewReviewService(db *gorm.DB, cfg *config.Config, eligibility *EligibilityService) *ReviewService {
	return &ReviewService{DB: db, Cfg: cfg, Eligibility: eligibility, now: time.Now}
}

type CreateReviewInput struct {
	Rating         int    `json:"rating"`
	Title          string `json:"title"`
	Comment        string `json:"comment"`
	Pros           string `json:"pros"`
	Cons           string `json:"cons"`
	WouldRecommend *bool  `json:"would_recommend"`
	IsAnonymous    bool   `json:"is_anonymous"`
}

// UpdateReviewInput carries a partial update; nil fields are left
// untouched.
type UpdateReviewInput struct {
	Rating         *int    `json:"rating"`
	Title          *string `json:"title"`
	Comment        *string `json:"comment"`
	Pros           *string `json:"pros"`
	Cons           *string `json:"cons"`
	WouldRecommend *bool   `json:"would_recommend"`
	IsAnonymous    *bool   `json:"is_anonymous"`
}

type ReviewFilters struct {
	CourseID  *uint
	UserID    *uint
	Status    string
	Rating    *int
	MinRating *int
	MaxRating *int
	Sort      string // newest, oldest, rating_high, rating_low, most_helpful
	Page      int
	Limit     int
}

// Pagination is the listing metadata returned alongside every page.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func validateRating(rating int) error {
	if rating < models.RatingMin || rating > models.RatingMax {
		return newValidationError("Rating must be between %d and %d (half-star units)",
			models.RatingMin, models.RatingMax)
	}
	return nil
}

func validateComment(comment string) error {
	if comment != "" && utf8.RuneCountInString(comment) < 10 {
		return newValidationError("Comment must be at least 10 characters long")
	}
	return nil
}

// CreateReview validates the input, runs the eligibility gate and
// persists the review. The completion percentage comes from the
// eligibility result and is frozen from then on. Reviews by verified
// users with an established track record skip the moderation queue.
func (s *ReviewService) CreateReview(userID, courseID uint, input CreateReviewInput) (*models.Review, error) {
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}
	if err := validateComment(input.Comment); err != nil {
		return nil, err
	}

	eligibility, err := s.Eligibility.CanUserReview(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanReview {
		return nil, &EligibilityError{
			Reason:               eligibility.Reason,
			CompletionPercentage: eligibility.CompletionPercentage,
		}
	}
	if eligibility.HasExistingReview {
		return nil, newValidationError("You have already reviewed this course")
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}

	status := models.ReviewStatusPending
	if user.EmailVerified {
		var priorApproved int64
		err := s.DB.Model(&models.Review{}).
			Where("user_id = ? AND status = ?", userID, models.ReviewStatusApproved).
			Count(&priorApproved).Error
		if err != nil {
			return nil, err
		}
		if priorApproved >= int64(s.Cfg.ReviewAutoApproveAfter) {
			status = models.ReviewStatusApproved
		}
	}

	review := models.Review{
		UserID:               userID,
		CourseID:             courseID,
		Rating:               input.Rating,
		Title:                input.Title,
		Comment:              input.Comment,
		Pros:                 input.Pros,
		Cons:                 input.Cons,
		WouldRecommend:       input.WouldRecommend,
		IsAnonymous:          input.IsAnonymous,
		CompletionPercentage: eligibility.CompletionPercentage,
		Status:               status,
	}
	if err := s.DB.Create(&review).Error; err != nil {
		return nil, err
	}

	return &review, nil
}

// UpdateReview applies a partial owner edit. Changing the rating or
// the comment of an approved review sends it back to the moderation
// queue; touching only flags like would_recommend does not.
func (s *ReviewService) UpdateReview(reviewID, userID uint, input UpdateReviewInput) (*models.Review, error) {
	var review models.Review
	if err := s.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrForbidden
	}

	window := time.Duration(s.Cfg.ReviewEditWindowDays) * 24 * time.Hour
	if s.now().Sub(review.CreatedAt) > window {
		return nil, ErrEditWindowExpired
	}

	if input.Rating != nil {
		if err := validateRating(*input.Rating); err != nil {
			return nil, err
		}
	}
	if input.Comment != nil {
		if err := validateComment(*input.Comment); err != nil {
			return nil, err
		}
	}

	contentChanged := input.Rating != nil || input.Comment != nil
	if contentChanged && review.Status == models.ReviewStatusApproved {
		review.Status = models.ReviewStatusPending
	}

	if input.Rating != nil {
		review.Rating = *input.Rating
	}
	if input.Title != nil {
		review.Title = *input.Title
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}
	if input.Pros != nil {
		review.Pros = *input.Pros
	}
	if input.Cons != nil {
		review.Cons = *input.Cons
	}
	if input.WouldRecommend != nil {
		review.WouldRecommend = input.WouldRecommend
	}
	if input.IsAnonymous != nil {
		review.IsAnonymous = *input.IsAnonymous
	}

	if err := s.DB.Save(&review).Error; err != nil {
		return nil, err
	}

	return &review, nil
}

// DeleteReview removes a review together with its votes and admin
// response. Owners may delete their own review, admins any.
func (s *ReviewService) DeleteReview(reviewID, userID uint, isAdmin bool) error {
	var review models.Review
	if err := s.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	if !isAdmin && review.UserID != userID {
		return ErrForbidden
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("review_id = ?", review.ID).Delete(&models.ReviewVote{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("review_id = ?", review.ID).Delete(&models.ReviewResponse{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&review).Error
	})
}

// GetReviews lists reviews with filters, sorting and offset
// pagination. Every sort key is tie-broken by id so pages are stable.
func (s *ReviewService) GetReviews(filters ReviewFilters) ([]models.Review, *Pagination, error) {
	query := s.DB.Model(&models.Review{})

	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Rating != nil {
		query = query.Where("rating = ?", *filters.Rating)
	}
	if filters.MinRating != nil {
		query = query.Where("rating >= ?", *filters.MinRating)
	}
	if filters.MaxRating != nil {
		query = query.Where("rating <= ?", *filters.MaxRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	switch filters.Sort {
	case "oldest":
		query = query.Order("created_at ASC, id ASC")
	case "rating_high":
		query = query.Order("rating DESC, id DESC")
	case "rating_low":
		query = query.Order("rating ASC, id ASC")
	case "most_helpful":
		query = query.Order("helpful_count DESC, id DESC")
	default: // newest
		query = query.Order("created_at DESC, id DESC")
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var reviews []models.Review
	err := query.Preload("User").Preload("Response").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, nil, err
	}

	return reviews, &Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

type CourseReviewStats struct {
	AverageRating            float64       `json:"average_rating"`
	TotalReviews             int64         `json:"total_reviews"`
	RatingDistribution       map[int]int64 `json:"rating_distribution"`
	WouldRecommendPercentage int           `json:"would_recommend_percentage"`
}

// GetCourseReviewStats aggregates the approved reviews of one course.
// Ratings are stored in half-star units, so the average is scaled back
// to stars and rounded to one decimal.
func (s *ReviewService) GetCourseReviewStats(courseID uint) (*CourseReviewStats, error) {
	var reviews []models.Review
	err := s.DB.Select("rating", "would_recommend").
		Where("course_id = ? AND status = ?", courseID, models.ReviewStatusApproved).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	stats := &CourseReviewStats{
		TotalReviews:       int64(len(reviews)),
		RatingDistribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(reviews) == 0 {
		return stats, nil
	}

	var ratingSum int
	var recommendYes, recommendTotal int
	for _, r := range reviews {
		ratingSum += r.Rating
		if star := starBucket(r.Rating); star >= 1 && star <= 5 {
			stats.RatingDistribution[star]++
		}
		if r.WouldRecommend != nil {
			recommendTotal++
			if *r.WouldRecommend {
				recommendYes++
			}
		}
	}

	average := float64(ratingSum) / float64(len(reviews)) / 10
	stats.AverageRating = math.Round(average*10) / 10
	if recommendTotal > 0 {
		stats.WouldRecommendPercentage = int(math.Round(float64(recommendYes) / float64(recommendTotal) * 100))
	}

	return stats, nil
}

// starBucket maps a half-star-unit rating to a whole star, rounding
// halves away from zero (15 buckets as 2).
func starBucket(rating int) int {
	return int(math.Round(float64(rating) / 10))
}
