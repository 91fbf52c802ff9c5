package auth

import (
	"fmt"

	"classifieds/internal/domain"
)

var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthenticated)
