package services

import (
	"errors"

	"project/backend/models"

	"gorm.io/gorm"
)

// ResponseService manages the single admin reply a review may carry.
type ResponseService struct {
	DB *gorm.DB
}

func NewResponseService(db *gorm.DB) *ResponseService {
	return &ResponseService{DB: db}
}

// AddAdminResponse upserts the response for a review: a second call
// replaces the content in place, the one-per-review constraint holds.
func (s *ResponseService) AddAdminResponse(reviewID, adminID uint, content string) (*models.ReviewResponse, error) {
	if content == "" {
		return nil, newValidationError("Response content must not be empty")
	}

	var review models.Review
	if err := s.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	var response models.ReviewResponse
	err := s.DB.Where("review_id = ?", reviewID).First(&response).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		response = models.ReviewResponse{ReviewID: reviewID, AdminID: adminID, Content: content}
		if err := s.DB.Create(&response).Error; err != nil {
			return nil, err
		}
		return &response, nil
	}

	response.AdminID = adminID
	response.Content = content
	if err := s.DB.Save(&response).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (s *ResponseService) DeleteAdminResponse(reviewID uint) error {
	var response models.ReviewResponse
	if err := s.DB.Where("review_id = ?", reviewID).First(&response).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResponseNotFound
		}
		return err
	}
	return s.DB.Unscoped().Delete(&response).Error
}
