package advertiser

import "time"

type CreateProfileInput struct {
	DisplayName string `json:"display_name" validate:"required,max=120"`
}

// UpdateProfileInput leaves nil fields untouched; a blank contact handle
// clears it.
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=120"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	Whatsapp    *string `json:"whatsapp" validate:"omitempty,max=32"`
	Telegram    *string `json:"telegram" validate:"omitempty,max=64"`
	Instagram   *string `json:"instagram" validate:"omitempty,max=64"`
}

// DocumentLinks are short-lived URLs to a verification submission.
type DocumentLinks struct {
	DocumentURL string    `json:"document_url"`
	SelfieURL   *string   `json:"selfie_url,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}
