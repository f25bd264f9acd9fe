package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/backoffice/internal"
	roleDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/role"
	"github.com/frahmantamala/backoffice/internal/store"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context) ([]roleDatamodel.Role, error) {
	var roles []roleDatamodel.Role
	if err := store.Conn(ctx, r.db).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, store.Translate(err)
	}
	return roles, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*roleDatamodel.Role, error) {
	var role roleDatamodel.Role
	if err := store.Conn(ctx, r.db).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, store.Translate(err)
	}
	return &role, nil
}

func (r *RoleRepository) Create(ctx context.Context, role *roleDatamodel.Role) error {
	return store.Translate(store.Conn(ctx, r.db).Create(role).Error)
}

func (r *RoleRepository) Update(ctx context.Context, role *roleDatamodel.Role) error {
	return store.Translate(store.Conn(ctx, r.db).Save(role).Error)
}

// Privileges returns the sorted permission codes of each requested role.
func (r *RoleRepository) Privileges(ctx context.Context, roleIDs ...int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(roleIDs))
	if len(roleIDs) == 0 {
		return out, nil
	}

	var rows []roleDatamodel.RolePrivilege
	err := store.Conn(ctx, r.db).
		Where("role_id IN ?", roleIDs).
		Order("role_id, permission").
		Find(&rows).Error
	if err != nil {
		return nil, store.Translate(err)
	}
	for _, row := range rows {
		out[row.RoleID] = append(out[row.RoleID], row.Permission)
	}
	return out, nil
}

// ReplacePrivileges swaps the role's privilege rows. Callers run it inside a transaction
// so readers never observe a partial set.
func (r *RoleRepository) ReplacePrivileges(ctx context.Context, roleID int64, permissions []string) error {
	db := store.Conn(ctx, r.db)
	if err := db.Where("role_id = ?", roleID).Delete(&roleDatamodel.RolePrivilege{}).Error; err != nil {
		return store.Translate(err)
	}
	if len(permissions) == 0 {
		return nil
	}

	rows := make([]roleDatamodel.RolePrivilege, 0, len(permissions))
	for _, p := range permissions {
		rows = append(rows, roleDatamodel.RolePrivilege{RoleID: roleID, Permission: p})
	}
	return store.Translate(db.Create(&rows).Error)
}
