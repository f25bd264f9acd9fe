package user

import (
	"context"
	"time"

	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
)

// User is the administrative view of an account. The password hash never leaves the repository layer.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	RoleID    int64     `json:"role_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RepositoryAPI persists users. Lookups of missing rows return internal.ErrUserNotFound.
type RepositoryAPI interface {
	List(ctx context.Context) ([]userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	Create(ctx context.Context, row *userDatamodel.User) error
	Update(ctx context.Context, row *userDatamodel.User) error
	RoleExists(ctx context.Context, roleID int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	// LockRegistration serializes first-user registration until the surrounding transaction ends.
	LockRegistration(ctx context.Context) error
	// EnsureSuperRole returns an active super role, creating one when none exists.
	EnsureSuperRole(ctx context.Context) (int64, error)
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		RoleID:    u.RoleID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
