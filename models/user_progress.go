package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProgress tracks gamified progression for each user (denormalized for performance)
type UserProgress struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service
	UserName       string `gorm:"not null;default:'User'" json:"user_name"`
	UserImgSrc     string `gorm:"not null;default:'/logo.svg'" json:"user_img_src"`

	Hearts int `json:"hearts" gorm:"default:5"`
	Points int `json:"points" gorm:"default:0"`
	Gems   int `json:"gems" gorm:"default:0"`
	Level  int `json:"level" gorm:"default:0"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
