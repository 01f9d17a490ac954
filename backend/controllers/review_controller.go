package controllers

import (
	"errors"
	"strconv"

	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReviewController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Reviews     *services.ReviewService
	Eligibility *services.EligibilityService
}

func NewReviewController(db *gorm.DB, cfg *config.Config, reviews *services.ReviewService, eligibility *services.EligibilityService) *ReviewController {
	return &ReviewController{DB: db, Cfg: cfg, Reviews: reviews, Eligibility: eligibility}
}

// serviceError maps domain errors to HTTP replies. Validation and
// eligibility messages are written for end users and pass through
// unchanged.
func serviceError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return utils.BadRequest(c, ve.Msg)
	}
	var ee *services.EligibilityError
	if errors.As(err, &ee) {
		return utils.Error(c, fiber.StatusForbidden, ee, fiber.Map{
			"completion_percentage": ee.CompletionPercentage,
		})
	}
	switch {
	case errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrVoteNotFound),
		errors.Is(err, services.ErrResponseNotFound),
		errors.Is(err, services.ErrCourseNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return utils.Forbidden(c, "You do not have access to this review")
	case errors.Is(err, services.ErrEditWindowExpired):
		return utils.Error(c, fiber.StatusForbidden, err)
	}
	return utils.InternalServerError(c, "Something went wrong")
}

// reviewJSON builds the public projection of a review. Anonymous
// reviews never expose the author.
func reviewJSON(r models.Review) fiber.Map {
	m := fiber.Map{
		"id":                    r.ID,
		"course_id":             r.CourseID,
		"rating":                r.Rating,
		"title":                 r.Title,
		"comment":               r.Comment,
		"pros":                  r.Pros,
		"cons":                  r.Cons,
		"would_recommend":       r.WouldRecommend,
		"is_anonymous":          r.IsAnonymous,
		"completion_percentage": r.CompletionPercentage,
		"status":                r.Status,
		"helpful_count":         r.HelpfulCount,
		"not_helpful_count":     r.NotHelpfulCount,
		"created_at":            r.CreatedAt,
		"updated_at":            r.UpdatedAt,
	}
	if r.IsAnonymous {
		m["reviewer"] = nil
	} else {
		m["user_id"] = r.UserID
		m["reviewer"] = models.ReviewerProfile{
			ID:        r.User.ID,
			Name:      r.User.Name,
			Surname:   r.User.Surname,
			AvatarURL: r.User.AvatarURL,
		}
	}
	if r.Response != nil {
		m["response"] = fiber.Map{
			"admin_id":   r.Response.AdminID,
			"content":    r.Response.Content,
			"created_at": r.Response.CreatedAt,
			"updated_at": r.Response.UpdatedAt,
		}
	}
	return m
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.Atoi(c.Params(name))
	if err != nil || value < 1 {
		return 0, errors.New("invalid " + name)
	}
	return uint(value), nil
}

func queryInt(c *fiber.Ctx, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}

// GetCourseReviews godoc
// @Summary List course reviews
// @Description Returns approved reviews for a course with filters, sorting and pagination.
// @Tags reviews
// @Produce json
// @Param id path int true "Course ID"
// @Param rating query int false "Exact rating (10-50)"
// @Param min_rating query int false "Minimum rating"
// @Param max_rating query int false "Maximum rating"
// @Param sort query string false "Sort order" Enums(newest, oldest, rating_high, rating_low, most_helpful)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /courses/{id}/reviews [get]
func (rc *ReviewController) GetCourseReviews(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	// Only moderated content is public; the admin listing serves the rest.
	filters := services.ReviewFilters{
		CourseID:  &courseID,
		Status:    models.ReviewStatusApproved,
		Rating:    queryInt(c, "rating"),
		MinRating: queryInt(c, "min_rating"),
		MaxRating: queryInt(c, "max_rating"),
		Sort:      c.Query("sort", "newest"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 10),
	}

	reviews, pagination, err := rc.Reviews.GetReviews(filters)
	if err != nil {
		return serviceError(c, err)
	}

	items := make([]fiber.Map, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, reviewJSON(r))
	}

	return utils.Paginate(c, items, pagination)
}

// GetCourseReviewStats godoc
// @Summary Course review statistics
// @Description Returns average rating, star distribution and recommendation rate over approved reviews.
// @Tags reviews
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /courses/{id}/reviews/stats [get]
func (rc *ReviewController) GetCourseReviewStats(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	stats, err := rc.Reviews.GetCourseReviewStats(courseID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, stats)
}

// GetReviewEligibility godoc
// @Summary Check review eligibility
// @Description Reports whether the caller may review the course and their current completion percentage.
// @Tags reviews
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/reviews/eligibility [get]
func (rc *ReviewController) GetReviewEligibility(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	result, err := rc.Eligibility.CanUserReview(userID, courseID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// CreateReview godoc
// @Summary Submit a course review
// @Description Creates a review for a purchased course. Requires sufficient course completion.
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param input body services.CreateReviewInput true "Review data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/reviews [post]
func (rc *ReviewController) CreateReview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input services.CreateReviewInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	review, err := rc.Reviews.CreateReview(userID, courseID, input)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Created(c, review)
}

// UpdateReview godoc
// @Summary Edit own review
// @Description Partially updates the caller's review within the edit window. Content changes send an approved review back to moderation.
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param input body services.UpdateReviewInput true "Fields to update"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/{id} [patch]
func (rc *ReviewController) UpdateReview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	var input services.UpdateReviewInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	review, err := rc.Reviews.UpdateReview(reviewID, userID, input)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, review)
}

// DeleteReview godoc
// @Summary Delete a review
// @Description Deletes the caller's review, or any review when the caller is an admin. Votes and the admin response go with it.
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/{id} [delete]
func (rc *ReviewController) DeleteReview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	var user models.User
	if err := rc.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	if err := rc.Reviews.DeleteReview(reviewID, userID, user.Role == "admin"); err != nil {
		return serviceError(c, err)
	}

	return utils.NoContent(c)
}
