package repository

import (
	"context"
	"strings"

	"classifieds/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user together with its initial roles.
func (r *UserRepository) Create(ctx context.Context, u *domain.User, roles ...domain.Role) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		for _, role := range roles {
			if err := tx.Create(&domain.UserRole{UserID: u.ID, Role: role}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate("create user", err)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, translate("get user by email", err)
	}
	return &u, nil
}

func (r *UserRepository) Roles(ctx context.Context, userID string) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.WithContext(ctx).
		Model(&domain.UserRole{}).
		Where("user_id = ?", userID).
		Order("role ASC").
		Pluck("role", &roles).Error
	if err != nil {
		return nil, translate("user roles", err)
	}
	return roles, nil
}

// GrantRole is idempotent.
func (r *UserRepository) GrantRole(ctx context.Context, userID string, role domain.Role) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.UserRole{UserID: userID, Role: role}).Error
	return translate("grant role", err)
}
