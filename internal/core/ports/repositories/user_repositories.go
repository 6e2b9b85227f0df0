package repositories

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
)

// UserReader defines read operations for user data. Users are created and
// deleted by the external roster administration.
type UserReader interface {
	// FindUserByID retrieves a user by ID, excluding soft-deleted users.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsersByRole retrieves users with the given role.
	ListUsersByRole(ctx context.Context, role domain.Role, limit int, offset int) ([]domain.User, error)
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
}
