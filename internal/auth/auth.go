package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// Account is the credential view of a user.
type Account struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	RoleID       int64
	IsActive     bool
}

// RoleRecord is what the resolver needs to know about a role.
type RoleRecord struct {
	ID       int64
	Name     string
	IsActive bool
	IsSuper  bool
}

// CredentialStore looks up accounts. Missing rows return internal.ErrUserNotFound.
type CredentialStore interface {
	FindUserByEmail(ctx context.Context, email string) (*Account, error)
	FindUserByID(ctx context.Context, id int64) (*Account, error)
}

// PrivilegeStore reads role rows and their granted permission codes.
// A missing role returns internal.ErrRoleNotFound.
type PrivilegeStore interface {
	FindRoleByID(ctx context.Context, roleID int64) (*RoleRecord, error)
	ListRolePrivileges(ctx context.Context, roleID int64) ([]string, error)
}

type RepositoryAPI interface {
	CredentialStore
	PrivilegeStore
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
