package stats

import "context"

// Dashboard holds the headline counts shown on the backoffice landing page.
type Dashboard struct {
	Users      int64 `json:"users" db:"users"`
	Roles      int64 `json:"roles" db:"roles"`
	Categories int64 `json:"categories" db:"categories"`
}

type RepositoryAPI interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}
