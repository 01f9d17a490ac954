package services

import (
	"testing"
	"time"

	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:              "testsecret",
		ReviewEditWindowDays:   30,
		ReviewMinCompletionPct: 20,
		ReviewAutoApproveAfter: 2,
	}
}

func seedUser(t *testing.T, db *gorm.DB, username string, verified bool) models.User {
	t.Helper()
	user := models.User{
		Username:      username,
		Email:         username + "@example.com",
		EmailVerified: verified,
		Name:          "Test",
		Surname:       "User",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, chapterCount int) (models.Course, models.CourseVersion, []models.Chapter) {
	t.Helper()
	course := models.Course{Title: "Go from scratch"}
	require.NoError(t, db.Create(&course).Error)

	version := models.CourseVersion{CourseID: course.ID, Label: "v1"}
	require.NoError(t, db.Create(&version).Error)

	chapters := make([]models.Chapter, 0, chapterCount)
	for i := 0; i < chapterCount; i++ {
		chapter := models.Chapter{VersionID: version.ID, Title: "Chapter", SequenceOrder: i + 1}
		require.NoError(t, db.Create(&chapter).Error)
		chapters = append(chapters, chapter)
	}

	course.ActiveVersionID = &version.ID
	require.NoError(t, db.Save(&course).Error)
	return course, version, chapters
}

func seedPurchase(t *testing.T, db *gorm.DB, userID, courseID uint, status string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Purchase{
		UserID:   userID,
		CourseID: courseID,
		Status:   status,
	}).Error)
}

func completeChapters(t *testing.T, db *gorm.DB, userID, versionID uint, chapters []models.Chapter, n int) {
	t.Helper()
	for i := 0; i < n && i < len(chapters); i++ {
		require.NoError(t, db.Create(&models.ChapterProgress{
			UserID:      userID,
			VersionID:   versionID,
			ChapterID:   chapters[i].ID,
			CompletedAt: time.Now(),
		}).Error)
	}
}

// seedEligibleUser wires a user, course, purchase and enough progress
// to pass the eligibility gate.
func seedEligibleUser(t *testing.T, db *gorm.DB, username string, verified bool) (models.User, models.Course) {
	t.Helper()
	user := seedUser(t, db, username, verified)
	course, version, chapters := seedCourse(t, db, 10)
	seedPurchase(t, db, user.ID, course.ID, models.PurchaseStatusCompleted)
	completeChapters(t, db, user.ID, version.ID, chapters, 5)
	return user, course
}

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }
