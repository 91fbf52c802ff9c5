package repository

import (
	"errors"
	"fmt"
	"strings"

	"classifieds/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translate folds driver errors into the domain taxonomy. Errors that
// already carry a domain kind pass through untouched.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		domain.ErrValidation, domain.ErrUnauthenticated, domain.ErrPermission, domain.ErrNotFound,
		domain.ErrInvalidTransition, domain.ErrConflict, domain.ErrStore,
		domain.ErrUpload, domain.ErrLimitReached,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return domain.StoreError(op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFoundIfNone turns a zero-row update into ErrNotFound.
func notFoundIfNone(op string, res *gorm.DB) error {
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
