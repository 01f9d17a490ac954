package models

import (
	"time"

	"gorm.io/gorm"
)

// Purchase statuses.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusRefunded  = "refunded"
)

// Course and its content tree are owned by the catalog service; this
// subsystem only reads them to gate review submission.
type Course struct {
	gorm.Model
	Title string
	// The single version currently published. Nil means the course has
	// no published content yet.
	ActiveVersionID *uint
}

type CourseVersion struct {
	gorm.Model
	CourseID uint `gorm:"index;not null"`
	Label    string
	Chapters []Chapter `gorm:"foreignKey:VersionID"`
}

type Chapter struct {
	gorm.Model
	VersionID     uint `gorm:"index;not null"`
	Title         string
	SequenceOrder int
}

type Purchase struct {
	gorm.Model
	UserID   uint   `gorm:"index:idx_purchases_user_course;not null"`
	CourseID uint   `gorm:"index:idx_purchases_user_course;not null"`
	Status   string `gorm:"default:pending"`
}

// ChapterProgress marks one chapter completed by one user within a
// course version.
type ChapterProgress struct {
	gorm.Model
	UserID      uint `gorm:"uniqueIndex:idx_chapter_progress_unique;not null"`
	VersionID   uint `gorm:"uniqueIndex:idx_chapter_progress_unique;not null"`
	ChapterID   uint `gorm:"uniqueIndex:idx_chapter_progress_unique;not null"`
	CompletedAt time.Time
}
