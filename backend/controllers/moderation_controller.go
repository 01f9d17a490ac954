package controllers

import (
	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ModerationController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Moderation *services.ModerationService
	Responses  *services.ResponseService
}

func NewModerationController(db *gorm.DB, cfg *config.Config, moderation *services.ModerationService, responses *services.ResponseService) *ModerationController {
	return &ModerationController{DB: db, Cfg: cfg, Moderation: moderation, Responses: responses}
}

// adminReviewJSON is the moderation-facing projection. Unlike the
// public one it always names the author, anonymous or not, and carries
// the moderation fields the queue acts on.
func adminReviewJSON(r models.Review) fiber.Map {
	m := reviewJSON(r)
	m["user_id"] = r.UserID
	m["reviewer"] = models.ReviewerProfile{
		ID:        r.User.ID,
		Name:      r.User.Name,
		Surname:   r.User.Surname,
		AvatarURL: r.User.AvatarURL,
	}
	m["rejection_reason"] = r.RejectionReason
	m["moderated_by_id"] = r.ModeratedByID
	m["moderated_at"] = r.ModeratedAt
	return m
}

// ModerateRequest is the body of the single-review moderation endpoint.
type ModerateRequest struct {
	Action string `json:"action" example:"approve"` // approve, reject, flag
	Reason string `json:"reason" example:"Contains spam links"`
}

// BulkModerateRequest applies one action to a batch of reviews.
type BulkModerateRequest struct {
	ReviewIDs []uint `json:"review_ids"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
}

// ModerateReview godoc
// @Summary Moderate a review
// @Description Applies approve/reject/flag to one review. Reject and flag store the given reason.
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param input body ModerateRequest true "Moderation action"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/{id}/moderate [post]
func (mc *ModerationController) ModerateReview(c *fiber.Ctx) error {
	adminID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	var input ModerateRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	review, err := mc.Moderation.Moderate(reviewID, input.Action, adminID, input.Reason)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, review)
}

// BulkModerate godoc
// @Summary Bulk moderation
// @Description Applies one action to every listed review and reports the outcome per id.
// @Tags moderation
// @Accept json
// @Produce json
// @Param input body BulkModerateRequest true "Batch action"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/bulk-moderate [post]
func (mc *ModerationController) BulkModerate(c *fiber.Ctx) error {
	adminID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input BulkModerateRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if len(input.ReviewIDs) == 0 {
		return utils.BadRequest(c, "review_ids must not be empty")
	}

	results, err := mc.Moderation.BulkModerate(input.ReviewIDs, input.Action, adminID, input.Reason)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, results)
}

// GetPendingReviews godoc
// @Summary Moderation queue
// @Description Returns pending reviews oldest first.
// @Tags moderation
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /admin/reviews/pending [get]
func (mc *ModerationController) GetPendingReviews(c *fiber.Ctx) error {
	reviews, pagination, err := mc.Moderation.GetPendingReviews(c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		return serviceError(c, err)
	}

	items := make([]fiber.Map, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, adminReviewJSON(r))
	}

	return utils.Paginate(c, items, pagination)
}

// GetAllReviews godoc
// @Summary Admin review listing
// @Description Lists reviews across courses and statuses with full filters.
// @Tags moderation
// @Produce json
// @Param course_id query int false "Course ID"
// @Param user_id query int false "User ID"
// @Param status query string false "Review status"
// @Param sort query string false "Sort order"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /admin/reviews [get]
func (mc *ModerationController) GetAllReviews(c *fiber.Ctx) error {
	filters := services.ReviewFilters{
		Status:    c.Query("status"),
		Rating:    queryInt(c, "rating"),
		MinRating: queryInt(c, "min_rating"),
		MaxRating: queryInt(c, "max_rating"),
		Sort:      c.Query("sort", "newest"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
	}
	if id := queryInt(c, "course_id"); id != nil && *id > 0 {
		courseID := uint(*id)
		filters.CourseID = &courseID
	}
	if id := queryInt(c, "user_id"); id != nil && *id > 0 {
		userID := uint(*id)
		filters.UserID = &userID
	}

	reviews, pagination, err := mc.Moderation.Reviews.GetReviews(filters)
	if err != nil {
		return serviceError(c, err)
	}

	items := make([]fiber.Map, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, adminReviewJSON(r))
	}

	return utils.Paginate(c, items, pagination)
}

// AddResponseRequest is the body of the response upsert endpoint.
type AddResponseRequest struct {
	Content string `json:"content" example:"Thanks for the feedback, the audio has been re-recorded."`
}

// UpsertAdminResponse godoc
// @Summary Add or replace the admin response
// @Description Each review carries at most one admin response; a second call updates it in place.
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param input body AddResponseRequest true "Response content"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/{id}/response [put]
func (mc *ModerationController) UpsertAdminResponse(c *fiber.Ctx) error {
	adminID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	var input AddResponseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	response, err := mc.Responses.AddAdminResponse(reviewID, adminID, input.Content)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, response)
}

// DeleteAdminResponse godoc
// @Summary Delete the admin response
// @Tags moderation
// @Produce json
// @Param id path int true "Review ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/{id}/response [delete]
func (mc *ModerationController) DeleteAdminResponse(c *fiber.Ctx) error {
	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	if err := mc.Responses.DeleteAdminResponse(reviewID); err != nil {
		return serviceError(c, err)
	}

	return utils.NoContent(c)
}
