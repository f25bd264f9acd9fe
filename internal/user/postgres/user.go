package postgres

import (
	"context"
	"errors"
	"hash/fnv"

	"github.com/frahmantamala/backoffice/internal"
	roleDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/store"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]userDatamodel.User, error) {
	var users []userDatamodel.User
	if err := store.Conn(ctx, r.db).Order("id ASC").Find(&users).Error; err != nil {
		return nil, store.Translate(err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := store.Conn(ctx, r.db).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, store.Translate(err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return store.Translate(store.Conn(ctx, r.db).Create(u).Error)
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	return store.Translate(store.Conn(ctx, r.db).Save(u).Error)
}

func (r *UserRepository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	var n int64
	err := store.Conn(ctx, r.db).Model(&roleDatamodel.Role{}).Where("id = ?", roleID).Count(&n).Error
	if err != nil {
		return false, store.Translate(err)
	}
	return n > 0, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := store.Conn(ctx, r.db).Model(&userDatamodel.User{}).Count(&n).Error; err != nil {
		return 0, store.Translate(err)
	}
	return n, nil
}

var registrationLockKey = func() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("users.register"))
	return int64(h.Sum64() >> 1)
}()

// LockRegistration takes a transaction-scoped advisory lock on postgres. Other dialects
// rely on their own write serialization.
func (r *UserRepository) LockRegistration(ctx context.Context) error {
	conn := store.Conn(ctx, r.db)
	if conn.Dialector.Name() != "postgres" {
		return nil
	}
	return store.Translate(conn.Exec("SELECT pg_advisory_xact_lock(?)", registrationLockKey).Error)
}

func (r *UserRepository) EnsureSuperRole(ctx context.Context) (int64, error) {
	conn := store.Conn(ctx, r.db)

	var role roleDatamodel.Role
	err := conn.Where("is_super = ? AND is_active = ?", true, true).Order("id ASC").First(&role).Error
	if err == nil {
		return role.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, store.Translate(err)
	}

	role = roleDatamodel.Role{Name: "superadmin", Description: "Unrestricted access", IsActive: true, IsSuper: true}
	if err := conn.Create(&role).Error; err != nil {
		return 0, store.Translate(err)
	}
	return role.ID, nil
}
