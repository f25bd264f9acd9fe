package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
	roleDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/store"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*auth.Account, error) {
	var u userDatamodel.User
	err := store.Conn(ctx, r.db).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, userError(err)
	}
	return toAccount(u), nil
}

func (r *Repository) FindUserByID(ctx context.Context, id int64) (*auth.Account, error) {
	var u userDatamodel.User
	if err := store.Conn(ctx, r.db).First(&u, id).Error; err != nil {
		return nil, userError(err)
	}
	return toAccount(u), nil
}

func (r *Repository) FindRoleByID(ctx context.Context, roleID int64) (*auth.RoleRecord, error) {
	var role roleDatamodel.Role
	if err := store.Conn(ctx, r.db).First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, store.Translate(err)
	}
	return &auth.RoleRecord{ID: role.ID, Name: role.Name, IsActive: role.IsActive, IsSuper: role.IsSuper}, nil
}

func (r *Repository) ListRolePrivileges(ctx context.Context, roleID int64) ([]string, error) {
	var codes []string
	err := store.Conn(ctx, r.db).
		Model(&roleDatamodel.RolePrivilege{}).
		Where("role_id = ?", roleID).
		Order("permission").
		Pluck("permission", &codes).Error
	if err != nil {
		return nil, store.Translate(err)
	}
	return codes, nil
}

func userError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return internal.ErrUserNotFound
	}
	return store.Translate(err)
}

func toAccount(u userDatamodel.User) *auth.Account {
	return &auth.Account{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		RoleID:       u.RoleID,
		IsActive:     u.IsActive,
	}
}
