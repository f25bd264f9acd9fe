package user

type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	RoleID   int64  `json:"role_id"`
}

// RegisterDTO creates the first account; its role is always the super role.
type RegisterDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UpdateUserDTO carries only the fields to change.
type UpdateUserDTO struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	RoleID   *int64  `json:"role_id"`
	IsActive *bool   `json:"is_active"`
}

// auditView is the snapshot written to the audit trail; it omits the password.
type auditView struct {
	ID              int64   `json:"id"`
	Email           string  `json:"email,omitempty"`
	Name            *string `json:"name,omitempty"`
	RoleID          *int64  `json:"role_id,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
	PasswordChanged bool    `json:"password_changed,omitempty"`
}

type UsersResponse struct {
	Users []*User `json:"users"`
}
