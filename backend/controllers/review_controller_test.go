package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"project/backend/config"
	"project/backend/models"
	"project/backend/routes"
	"project/backend/services"
	"project/backend/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{
		JWTSecret:              "testsecret",
		ReviewEditWindowDays:   30,
		ReviewMinCompletionPct: 20,
		ReviewAutoApproveAfter: 2,
	}

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, services.NopNotifier{})

	return &testEnv{app: app, db: db, cfg: cfg}
}

func (e *testEnv) token(t *testing.T, userID uint) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(userID, e.cfg)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

// seedReviewer creates a verified user with a completed purchase and
// half the course behind them.
func (e *testEnv) seedReviewer(t *testing.T, username string) (models.User, models.Course) {
	t.Helper()

	user := models.User{
		Username:      username,
		Email:         username + "@example.com",
		EmailVerified: true,
		Name:          "Dana",
		Surname:       "Reviewer",
	}
	require.NoError(t, e.db.Create(&user).Error)

	course := models.Course{Title: "Distributed systems"}
	require.NoError(t, e.db.Create(&course).Error)
	version := models.CourseVersion{CourseID: course.ID, Label: "v1"}
	require.NoError(t, e.db.Create(&version).Error)
	course.ActiveVersionID = &version.ID
	require.NoError(t, e.db.Save(&course).Error)

	for i := 0; i < 4; i++ {
		chapter := models.Chapter{VersionID: version.ID, SequenceOrder: i + 1}
		require.NoError(t, e.db.Create(&chapter).Error)
		if i < 2 {
			require.NoError(t, e.db.Create(&models.ChapterProgress{
				UserID:      user.ID,
				VersionID:   version.ID,
				ChapterID:   chapter.ID,
				CompletedAt: time.Now(),
			}).Error)
		}
	}
	require.NoError(t, e.db.Create(&models.Purchase{
		UserID:   user.ID,
		CourseID: course.ID,
		Status:   models.PurchaseStatusCompleted,
	}).Error)

	return user, course
}

func (e *testEnv) seedAdmin(t *testing.T) models.User {
	t.Helper()
	admin := models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Role:     "admin",
	}
	require.NoError(t, e.db.Create(&admin).Error)
	return admin
}

func TestReviewLifecycleOverHTTP(t *testing.T) {
	env := setupTestApp(t)
	user, course := env.seedReviewer(t, "dana")
	admin := env.seedAdmin(t)
	userToken := env.token(t, user.ID)
	adminToken := env.token(t, admin.ID)

	coursePath := fmt.Sprintf("/api/courses/%d/reviews", course.ID)

	// Unauthenticated create is rejected.
	status, _ := env.request(t, "POST", coursePath, "", map[string]interface{}{"rating": 45})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// Eligibility endpoint reports the completion percentage.
	status, result := env.request(t, "GET", coursePath+"/eligibility", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, true, data["can_review"])
	assert.Equal(t, float64(50), data["completion_percentage"])

	// Create the review.
	status, result = env.request(t, "POST", coursePath, userToken, map[string]interface{}{
		"rating":          45,
		"title":           "Dense but worth it",
		"comment":         "The consensus chapter alone is worth the price.",
		"would_recommend": true,
	})
	require.Equal(t, fiber.StatusCreated, status)
	created := result["data"].(map[string]interface{})
	reviewID := uint(created["ID"].(float64))
	assert.Equal(t, "pending", created["Status"])

	// The public listing hides it while pending.
	status, result = env.request(t, "GET", coursePath, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, result["data"])

	// Moderation requires the admin role.
	moderatePath := fmt.Sprintf("/api/reviews/%d/moderate", reviewID)
	status, _ = env.request(t, "POST", moderatePath, userToken, map[string]interface{}{"action": "approve"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = env.request(t, "POST", moderatePath, adminToken, map[string]interface{}{"action": "approve"})
	require.Equal(t, fiber.StatusOK, status)

	// Now it is public, with pagination metadata.
	status, result = env.request(t, "GET", coursePath, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	items := result["data"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, float64(45), item["rating"])
	assert.NotNil(t, item["reviewer"])

	pagination := result["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total"])
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(10), pagination["limit"])
	assert.Equal(t, float64(1), pagination["totalPages"])

	// Stats over the single approved review.
	status, result = env.request(t, "GET", coursePath+"/stats", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := result["data"].(map[string]interface{})
	assert.Equal(t, 4.5, stats["average_rating"])
	assert.Equal(t, float64(1), stats["total_reviews"])
	assert.Equal(t, float64(100), stats["would_recommend_percentage"])
}

func TestVoteAndResponseOverHTTP(t *testing.T) {
	env := setupTestApp(t)
	user, course := env.seedReviewer(t, "author")
	admin := env.seedAdmin(t)

	voter := models.User{Username: "voter", Email: "voter@example.com"}
	require.NoError(t, env.db.Create(&voter).Error)

	review := models.Review{
		UserID:               user.ID,
		CourseID:             course.ID,
		Rating:               40,
		CompletionPercentage: 50,
		Status:               models.ReviewStatusApproved,
	}
	require.NoError(t, env.db.Create(&review).Error)

	voterToken := env.token(t, voter.ID)
	adminToken := env.token(t, admin.ID)
	votePath := fmt.Sprintf("/api/reviews/%d/vote", review.ID)

	// Vote, then flip.
	status, _ := env.request(t, "POST", votePath, voterToken, map[string]interface{}{"is_helpful": true})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = env.request(t, "POST", votePath, voterToken, map[string]interface{}{"is_helpful": false})
	require.Equal(t, fiber.StatusOK, status)

	var got models.Review
	require.NoError(t, env.db.First(&got, review.ID).Error)
	assert.Equal(t, 0, got.HelpfulCount)
	assert.Equal(t, 1, got.NotHelpfulCount)

	// Remove the vote.
	status, _ = env.request(t, "DELETE", votePath, voterToken, nil)
	require.Equal(t, fiber.StatusNoContent, status)
	require.NoError(t, env.db.First(&got, review.ID).Error)
	assert.Equal(t, 0, got.NotHelpfulCount)

	// Admin response upsert, twice, stays a single row.
	responsePath := fmt.Sprintf("/api/reviews/%d/response", review.ID)
	status, _ = env.request(t, "PUT", responsePath, adminToken, map[string]interface{}{"content": "Thanks, noted."})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = env.request(t, "PUT", responsePath, adminToken, map[string]interface{}{"content": "Fixed in the latest drop."})
	require.Equal(t, fiber.StatusOK, status)

	var responses int64
	env.db.Model(&models.ReviewResponse{}).Where("review_id = ?", review.ID).Count(&responses)
	assert.EqualValues(t, 1, responses)

	status, _ = env.request(t, "DELETE", responsePath, adminToken, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestPublicListingServesOnlyApprovedReviews(t *testing.T) {
	env := setupTestApp(t)
	user, course := env.seedReviewer(t, "drafty")

	review := models.Review{
		UserID:               user.ID,
		CourseID:             course.ID,
		Rating:               20,
		Comment:              "Unmoderated draft nobody should read yet.",
		CompletionPercentage: 50,
		Status:               models.ReviewStatusPending,
	}
	require.NoError(t, env.db.Create(&review).Error)

	// The status query must not open a window into the queue.
	for _, status := range []string{"", "pending", "rejected", "flagged"} {
		path := fmt.Sprintf("/api/courses/%d/reviews?status=%s", course.ID, status)
		code, result := env.request(t, "GET", path, "", nil)
		require.Equal(t, fiber.StatusOK, code)
		assert.Empty(t, result["data"], "status=%q", status)
	}
}

func TestAdminListingExposesModerationFields(t *testing.T) {
	env := setupTestApp(t)
	user, course := env.seedReviewer(t, "masked")
	admin := env.seedAdmin(t)
	adminToken := env.token(t, admin.ID)

	review := models.Review{
		UserID:               user.ID,
		CourseID:             course.ID,
		Rating:               20,
		IsAnonymous:          true,
		CompletionPercentage: 50,
		Status:               models.ReviewStatusPending,
	}
	require.NoError(t, env.db.Create(&review).Error)

	// The queue names the author even when the review is anonymous.
	code, result := env.request(t, "GET", "/api/admin/reviews/pending", adminToken, nil)
	require.Equal(t, fiber.StatusOK, code)
	items := result["data"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, float64(user.ID), item["user_id"])
	require.NotNil(t, item["reviewer"])

	code, _ = env.request(t, "POST", fmt.Sprintf("/api/reviews/%d/moderate", review.ID), adminToken,
		map[string]interface{}{"action": "reject", "reason": "Spam links"})
	require.Equal(t, fiber.StatusOK, code)

	// The admin listing shows the rejection reason and the moderator.
	code, result = env.request(t, "GET", "/api/admin/reviews?status=rejected", adminToken, nil)
	require.Equal(t, fiber.StatusOK, code)
	items = result["data"].([]interface{})
	require.Len(t, items, 1)
	item = items[0].(map[string]interface{})
	assert.Equal(t, "Spam links", item["rejection_reason"])
	assert.Equal(t, float64(admin.ID), item["moderated_by_id"])
	assert.NotNil(t, item["moderated_at"])
}

func TestAnonymousReviewMasksAuthor(t *testing.T) {
	env := setupTestApp(t)
	user, course := env.seedReviewer(t, "ghost")

	review := models.Review{
		UserID:               user.ID,
		CourseID:             course.ID,
		Rating:               30,
		IsAnonymous:          true,
		CompletionPercentage: 50,
		Status:               models.ReviewStatusApproved,
	}
	require.NoError(t, env.db.Create(&review).Error)

	status, result := env.request(t, "GET", fmt.Sprintf("/api/courses/%d/reviews", course.ID), "", nil)
	require.Equal(t, fiber.StatusOK, status)
	items := result["data"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Nil(t, item["reviewer"])
	_, exposed := item["user_id"]
	assert.False(t, exposed)
}

func TestBulkModerateOverHTTP(t *testing.T) {
	env := setupTestApp(t)
	user, course := env.seedReviewer(t, "bulk")
	admin := env.seedAdmin(t)

	other := models.User{Username: "other", Email: "other@example.com"}
	require.NoError(t, env.db.Create(&other).Error)

	r1 := models.Review{UserID: user.ID, CourseID: course.ID, Rating: 40, CompletionPercentage: 50, Status: models.ReviewStatusPending}
	r2 := models.Review{UserID: other.ID, CourseID: course.ID, Rating: 20, CompletionPercentage: 50, Status: models.ReviewStatusPending}
	require.NoError(t, env.db.Create(&r1).Error)
	require.NoError(t, env.db.Create(&r2).Error)

	status, result := env.request(t, "POST", "/api/reviews/bulk-moderate", env.token(t, admin.ID), map[string]interface{}{
		"review_ids": []uint{r1.ID, r2.ID, 9999},
		"action":     "reject",
		"reason":     "spam",
	})
	require.Equal(t, fiber.StatusOK, status)

	outcomes := result["data"].([]interface{})
	require.Len(t, outcomes, 3)
	assert.Equal(t, "applied", outcomes[0].(map[string]interface{})["outcome"])
	assert.Equal(t, "not_found", outcomes[2].(map[string]interface{})["outcome"])

	var got models.Review
	require.NoError(t, env.db.First(&got, r1.ID).Error)
	assert.Equal(t, models.ReviewStatusRejected, got.Status)
	assert.Equal(t, "spam", got.RejectionReason)
}
