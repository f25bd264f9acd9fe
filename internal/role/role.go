// Package role administers roles and the permissions granted to them. Every change that can
// narrow a role's grant announces itself on the event bus once the transaction commits, which
// drops the resolver's cached grant before the next request is authorized.
package role

import (
	"context"
	"time"

	"github.com/frahmantamala/backoffice/internal/auth"
	roleDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/role"
)

type Role struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IsActive    bool              `json:"is_active"`
	IsSuper     bool              `json:"is_super"`
	Permissions []auth.Permission `json:"permissions"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// RepositoryAPI persists roles. Lookups of missing rows return internal.ErrRoleNotFound.
type RepositoryAPI interface {
	List(ctx context.Context) ([]roleDatamodel.Role, error)
	GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error)
	Create(ctx context.Context, row *roleDatamodel.Role) error
	Update(ctx context.Context, row *roleDatamodel.Role) error
	Privileges(ctx context.Context, roleIDs ...int64) (map[int64][]string, error)
	ReplacePrivileges(ctx context.Context, roleID int64, permissions []string) error
}

func FromDataModel(r *roleDatamodel.Role, permissions []string) *Role {
	perms := make([]auth.Permission, 0, len(permissions))
	for _, p := range permissions {
		perms = append(perms, auth.Permission(p))
	}
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		IsSuper:     r.IsSuper,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
