package auth

import (
	"context"
	"time"

	"classifieds/internal/domain"
	"classifieds/internal/pkg/jwt"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User, roles ...domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Roles(ctx context.Context, userID string) ([]domain.Role, error)
}

type ProfileStore interface {
	Create(ctx context.Context, a *domain.AdvertiserProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.AdvertiserProfile, error)
}

type Tokens interface {
	GenerateToken(userID string) (string, error)
	ValidateToken(token string) (*jwt.Claims, error)
	TTL() time.Duration
}
