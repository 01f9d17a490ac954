package controllers

import (
	"time"

	"project/backend/config"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	Cfg       *config.Config
	Analytics *services.AnalyticsService
}

func NewAnalyticsController(cfg *config.Config, analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Cfg: cfg, Analytics: analytics}
}

// GetReviewAnalytics godoc
// @Summary Review analytics
// @Description Aggregate review statistics inside an optional date window, trailing 30 days by default.
// @Tags analytics
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD)"
// @Param end_date query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/reviews/analytics [get]
func (ac *AnalyticsController) GetReviewAnalytics(c *fiber.Ctx) error {
	var start, end *time.Time

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return utils.BadRequest(c, "Invalid start_date format. Use YYYY-MM-DD")
		}
		start = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return utils.BadRequest(c, "Invalid end_date format. Use YYYY-MM-DD")
		}
		// Include the whole end day.
		endOfDay := parsed.Add(24*time.Hour - time.Nanosecond)
		end = &endOfDay
	}

	analytics, err := ac.Analytics.GetReviewAnalytics(start, end)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, analytics)
}
