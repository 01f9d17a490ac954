package services

import (
	"testing"

	"project/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponseService(t *testing.T) *ResponseService {
	t.Helper()
	return NewResponseService(newTestDB(t))
}

func seedRespondableReview(t *testing.T, svc *ResponseService) models.Review {
	t.Helper()
	author := seedUser(t, svc.DB, "author", true)
	review := models.Review{
		UserID:               author.ID,
		CourseID:             1,
		Rating:               20,
		CompletionPercentage: 100,
		Status:               models.ReviewStatusApproved,
	}
	require.NoError(t, svc.DB.Create(&review).Error)
	return review
}

func TestAddAdminResponseUpserts(t *testing.T) {
	svc := newResponseService(t)
	review := seedRespondableReview(t, svc)
	admin := seedUser(t, svc.DB, "admin", true)
	admin2 := seedUser(t, svc.DB, "admin2", true)

	first, err := svc.AddAdminResponse(review.ID, admin.ID, "We hear you, the module is being reworked.")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, first.AdminID)

	second, err := svc.AddAdminResponse(review.ID, admin2.ID, "The reworked module is live.")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "second call must update in place")
	assert.Equal(t, admin2.ID, second.AdminID)
	assert.Equal(t, "The reworked module is live.", second.Content)

	var count int64
	svc.DB.Model(&models.ReviewResponse{}).Where("review_id = ?", review.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddAdminResponseValidation(t *testing.T) {
	svc := newResponseService(t)
	review := seedRespondableReview(t, svc)
	admin := seedUser(t, svc.DB, "admin", true)

	_, err := svc.AddAdminResponse(review.ID, admin.ID, "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.AddAdminResponse(9999, admin.ID, "No such review")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestDeleteAdminResponse(t *testing.T) {
	svc := newResponseService(t)
	review := seedRespondableReview(t, svc)
	admin := seedUser(t, svc.DB, "admin", true)

	_, err := svc.AddAdminResponse(review.ID, admin.ID, "Noted, thanks for the details.")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAdminResponse(review.ID))

	err = svc.DeleteAdminResponse(review.ID)
	assert.ErrorIs(t, err, ErrResponseNotFound)
}
