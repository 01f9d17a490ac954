package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username      string `gorm:"unique;not null"`
	Email         string `gorm:"unique;not null"`
	EmailVerified bool   `gorm:"default:false"`
	Role          string `gorm:"default:user"` // user, admin
	Name          string
	Surname       string
	AvatarURL     string
}

// ReviewerProfile is the public projection of a review author.
type ReviewerProfile struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	AvatarURL string `json:"avatar_url"`
}
