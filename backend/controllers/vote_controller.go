package controllers

import (
	"project/backend/config"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type VoteController struct {
	Cfg   *config.Config
	Votes *services.VoteService
}

func NewVoteController(cfg *config.Config, votes *services.VoteService) *VoteController {
	return &VoteController{Cfg: cfg, Votes: votes}
}

// VoteRequest is the body of the helpfulness vote endpoint.
type VoteRequest struct {
	IsHelpful *bool `json:"is_helpful"`
}

// VoteReview godoc
// @Summary Vote on review helpfulness
// @Description Casts or flips the caller's helpfulness vote. Voting the same way twice is a no-op.
// @Tags votes
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param input body VoteRequest true "Vote"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/{id}/vote [post]
func (vc *VoteController) VoteReview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, vc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	var input VoteRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.IsHelpful == nil {
		return utils.BadRequest(c, "is_helpful is required")
	}

	vote, err := vc.Votes.VoteReview(reviewID, userID, *input.IsHelpful)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, vote)
}

// RemoveVote godoc
// @Summary Remove own vote
// @Tags votes
// @Produce json
// @Param id path int true "Review ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /reviews/{id}/vote [delete]
func (vc *VoteController) RemoveVote(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, vc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	if err := vc.Votes.RemoveVote(reviewID, userID); err != nil {
		return serviceError(c, err)
	}

	return utils.NoContent(c)
}

// ReconcileVotes godoc
// @Summary Recompute vote counters
// @Description Recomputes both helpfulness counters of a review from its vote rows.
// @Tags votes
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/reviews/{id}/reconcile-votes [post]
func (vc *VoteController) ReconcileVotes(c *fiber.Ctx) error {
	reviewID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid review ID")
	}

	review, err := vc.Votes.ReconcileCounters(reviewID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"review_id":         review.ID,
		"helpful_count":     review.HelpfulCount,
		"not_helpful_count": review.NotHelpfulCount,
	})
}
