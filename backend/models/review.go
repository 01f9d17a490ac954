package models

import (
	"time"

	"gorm.io/gorm"
)

// Review statuses. A review is created as pending (or approved when the
// author qualifies for auto-approval) and moves between states only
// through moderation.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
	ReviewStatusFlagged  = "flagged"
)

// Rating bounds in half-star units: 10 = 1.0 stars, 50 = 5.0 stars.
const (
	RatingMin = 10
	RatingMax = 50
)

type Review struct {
	gorm.Model
	UserID         uint `gorm:"uniqueIndex:idx_reviews_user_course;not null"`
	CourseID       uint `gorm:"uniqueIndex:idx_reviews_user_course;not null"`
	Rating         int  `gorm:"not null;check:rating >= 10 AND rating <= 50"`
	Title          string
	Comment        string
	Pros           string
	Cons           string
	WouldRecommend *bool
	IsAnonymous    bool `gorm:"default:false"`
	// Share of the course completed when the review was written.
	// Frozen at creation, never recomputed.
	CompletionPercentage int    `gorm:"not null"`
	Status               string `gorm:"default:pending;index"`
	HelpfulCount         int    `gorm:"default:0;check:helpful_count >= 0"`
	NotHelpfulCount      int    `gorm:"default:0;check:not_helpful_count >= 0"`
	ModeratedByID        *uint
	ModeratedAt          *time.Time
	RejectionReason      string

	User     User            `gorm:"foreignKey:UserID"`
	Votes    []ReviewVote    `gorm:"constraint:OnDelete:CASCADE"`
	Response *ReviewResponse `gorm:"constraint:OnDelete:CASCADE"`
}

// ReviewVote is one user's helpfulness judgment on a review. One row
// per (review, user); the value may flip but never duplicates.
type ReviewVote struct {
	gorm.Model
	ReviewID  uint `gorm:"uniqueIndex:idx_review_votes_review_user;not null"`
	UserID    uint `gorm:"uniqueIndex:idx_review_votes_review_user;not null"`
	IsHelpful bool `gorm:"not null"`
}

// ReviewResponse is the single admin reply allowed per review.
type ReviewResponse struct {
	gorm.Model
	ReviewID uint `gorm:"uniqueIndex;not null"`
	AdminID  uint `gorm:"not null"`
	Content  string
}
