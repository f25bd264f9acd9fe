package postgres

import (
	"context"
	"strings"

	"github.com/frahmantamala/backoffice/internal/audit"
	datamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/audit"
	"github.com/frahmantamala/backoffice/internal/store"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, row *datamodel.AuditLog) error {
	return store.Translate(store.Conn(ctx, r.db).Create(row).Error)
}

func (r *AuditRepository) Query(ctx context.Context, filter audit.Filter, offset, limit int) ([]datamodel.AuditLog, error) {
	var rows []datamodel.AuditLog
	err := applyFilter(store.Conn(ctx, r.db).Model(&datamodel.AuditLog{}), filter).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, store.Translate(err)
	}
	return rows, nil
}

func (r *AuditRepository) Count(ctx context.Context, filter audit.Filter) (int64, error) {
	var total int64
	err := applyFilter(store.Conn(ctx, r.db).Model(&datamodel.AuditLog{}), filter).Count(&total).Error
	if err != nil {
		return 0, store.Translate(err)
	}
	return total, nil
}

func applyFilter(q *gorm.DB, f audit.Filter) *gorm.DB {
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.Action != "" {
		q = q.Where("action_type = ?", string(f.Action))
	}
	if f.Resource != "" {
		q = q.Where("resource_type = ?", string(f.Resource))
	}
	if f.Email != "" {
		q = q.Where(`LOWER(actor_email) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Email))+"%")
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
