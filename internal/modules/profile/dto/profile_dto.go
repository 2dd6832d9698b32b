package dto

import (
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/entity"
	metrics "github.com/fitlogapp/fitlog-backend/internal/modules/metrics/service"
)

type UpdateProfileInput struct {
	Username *string `json:"username" form:"username"`
	Password *string `json:"password" form:"password"`
	FullName *string `json:"full_name" form:"full_name"`
	Bio      *string `json:"bio" form:"bio"`
}

type ProfileResponse struct {
	User           *entity.User        `json:"user"`
	Profile        *entity.Profile     `json:"profile"`
	Metrics        metrics.UserMetrics `json:"metrics"`
	UnlockedBadges int64               `json:"unlocked_badges"`
}

type PublicProfileResponse struct {
	Username       string              `json:"username"`
	FullName       string              `json:"full_name"`
	Bio            *string             `json:"bio,omitempty"`
	AvatarURL      *string             `json:"avatar_url,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Metrics        metrics.UserMetrics `json:"metrics"`
	UnlockedBadges int64               `json:"unlocked_badges"`
}
