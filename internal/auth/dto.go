package auth

import "time"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserView struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	RoleID int64  `json:"role_id"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

type ProfileResponse struct {
	User        UserView     `json:"user"`
	Permissions []Permission `json:"permissions"`
	SuperRole   bool         `json:"super_role"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

func toUserView(a *Account) UserView {
	return UserView{ID: a.ID, Email: a.Email, Name: a.Name, RoleID: a.RoleID}
}
