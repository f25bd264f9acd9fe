package postgres

import (
	"context"

	"github.com/frahmantamala/backoffice/internal/stats"
	"github.com/frahmantamala/backoffice/internal/store"
	"github.com/jmoiron/sqlx"
)

const dashboardQuery = `
SELECT
	(SELECT COUNT(*) FROM users)      AS users,
	(SELECT COUNT(*) FROM roles)      AS roles,
	(SELECT COUNT(*) FROM categories) AS categories`

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Dashboard(ctx context.Context) (*stats.Dashboard, error) {
	var d stats.Dashboard
	if err := r.db.GetContext(ctx, &d, dashboardQuery); err != nil {
		return nil, store.Translate(err)
	}
	return &d, nil
}
