package services

import (
	"math"
	"sort"
	"time"

	"project/backend/models"

	"gorm.io/gorm"
)

// AnalyticsService produces read-only aggregate statistics over the
// review collection for the admin dashboard.
type AnalyticsService struct {
	DB *gorm.DB

	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db, now: time.Now}
}

type DailyReviewCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

type ReviewAnalytics struct {
	StartDate          string             `json:"start_date"`
	EndDate            string             `json:"end_date"`
	TotalReviews       int64              `json:"total_reviews"`
	StatusCounts       map[string]int64   `json:"status_counts"`
	AverageRating      float64            `json:"average_rating"`
	RatingDistribution map[int]int64      `json:"rating_distribution"`
	DailySeries        []DailyReviewCount `json:"daily_series"`
	ApprovalRate       int                `json:"approval_rate"`
}

// GetReviewAnalytics aggregates reviews created inside the window,
// trailing 30 days when no bounds are given. Average rating and the
// star distribution only consider approved reviews.
func (s *AnalyticsService) GetReviewAnalytics(start, end *time.Time) (*ReviewAnalytics, error) {
	to := s.now()
	if end != nil {
		to = *end
	}
	from := to.AddDate(0, 0, -30)
	if start != nil {
		from = *start
	}

	var reviews []models.Review
	err := s.DB.Select("created_at", "status", "rating").
		Where("created_at BETWEEN ? AND ?", from, to).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	analytics := &ReviewAnalytics{
		StartDate:    from.UTC().Format("2006-01-02"),
		EndDate:      to.UTC().Format("2006-01-02"),
		TotalReviews: int64(len(reviews)),
		StatusCounts: map[string]int64{
			models.ReviewStatusPending:  0,
			models.ReviewStatusApproved: 0,
			models.ReviewStatusRejected: 0,
			models.ReviewStatusFlagged:  0,
		},
		RatingDistribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		DailySeries:        []DailyReviewCount{},
	}

	daily := make(map[string]int64)
	var approvedSum, approvedCount int
	for _, r := range reviews {
		analytics.StatusCounts[r.Status]++
		daily[r.CreatedAt.UTC().Format("2006-01-02")]++
		if r.Status == models.ReviewStatusApproved {
			approvedSum += r.Rating
			approvedCount++
			if star := starBucket(r.Rating); star >= 1 && star <= 5 {
				analytics.RatingDistribution[star]++
			}
		}
	}

	if approvedCount > 0 {
		average := float64(approvedSum) / float64(approvedCount) / 10
		analytics.AverageRating = math.Round(average*10) / 10
	}
	if analytics.TotalReviews > 0 {
		approved := analytics.StatusCounts[models.ReviewStatusApproved]
		analytics.ApprovalRate = int(math.Round(float64(approved) / float64(analytics.TotalReviews) * 100))
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		analytics.DailySeries = append(analytics.DailySeries, DailyReviewCount{Date: day, Count: daily[day]})
	}

	return analytics, nil
}
