package routes

import (
	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"
	"project/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, notifier services.Notifier) {
	// Services
	eligibilityService := services.NewEligibilityService(db, cfg)
	reviewService := services.NewReviewService(db, cfg, eligibilityService)
	moderationService := services.NewModerationService(db, reviewService, notifier)
	responseService := services.NewResponseService(db)
	voteService := services.NewVoteService(db)
	analyticsService := services.NewAnalyticsService(db)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Review routes
	reviewController := controllers.NewReviewController(db, cfg, reviewService, eligibilityService)
	app.Get("/api/courses/:id/reviews", reviewController.GetCourseReviews)
	app.Get("/api/courses/:id/reviews/stats", reviewController.GetCourseReviewStats)
	app.Get("/api/courses/:id/reviews/eligibility", authMiddleware, reviewController.GetReviewEligibility)
	app.Post("/api/courses/:id/reviews", authMiddleware, reviewController.CreateReview)
	app.Patch("/api/reviews/:id", authMiddleware, reviewController.UpdateReview)
	app.Delete("/api/reviews/:id", authMiddleware, reviewController.DeleteReview)

	// Vote routes
	voteController := controllers.NewVoteController(cfg, voteService)
	app.Post("/api/reviews/:id/vote", authMiddleware, voteController.VoteReview)
	app.Delete("/api/reviews/:id/vote", authMiddleware, voteController.RemoveVote)

	// Moderation routes
	moderationController := controllers.NewModerationController(db, cfg, moderationService, responseService)
	app.Post("/api/reviews/:id/moderate", authMiddleware, adminMiddleware, moderationController.ModerateReview)
	app.Post("/api/reviews/bulk-moderate", authMiddleware, adminMiddleware, moderationController.BulkModerate)
	app.Put("/api/reviews/:id/response", authMiddleware, adminMiddleware, moderationController.UpsertAdminResponse)
	app.Delete("/api/reviews/:id/response", authMiddleware, adminMiddleware, moderationController.DeleteAdminResponse)

	// Admin routes
	analyticsController := controllers.NewAnalyticsController(cfg, analyticsService)
	admin := app.Group("/api/admin/reviews", authMiddleware, adminMiddleware)
	admin.Get("/", moderationController.GetAllReviews)
	admin.Get("/pending", moderationController.GetPendingReviews)
	admin.Get("/analytics", analyticsController.GetReviewAnalytics)
	admin.Post("/:id/reconcile-votes", voteController.ReconcileVotes)
}
