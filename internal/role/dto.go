package role

import "github.com/frahmantamala/backoffice/internal/auth"

type CreateRoleDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleDTO carries only the fields to change.
type UpdateRoleDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type SetPrivilegesDTO struct {
	Permissions []string `json:"permissions"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

type CatalogResponse struct {
	Groups []auth.PermissionGroup `json:"groups"`
}

// PrivilegeChange is the audit snapshot of a privilege replacement.
type PrivilegeChange struct {
	RoleID  int64             `json:"role_id"`
	Before  []auth.Permission `json:"before"`
	After   []auth.Permission `json:"after"`
	Added   []auth.Permission `json:"added"`
	Removed []auth.Permission `json:"removed"`
}
