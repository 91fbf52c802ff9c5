package auth

import (
	"time"

	"classifieds/internal/domain"
)

type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=120"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by sign-up and sign-in.
type Session struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type Me struct {
	User         *domain.User              `json:"user"`
	Roles        []domain.Role             `json:"roles"`
	AdvertiserID string                    `json:"advertiser_id,omitempty"`
	Profile      *domain.AdvertiserProfile `json:"profile,omitempty"`
}
