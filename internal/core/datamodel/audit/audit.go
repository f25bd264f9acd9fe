package audit

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrImmutable = errors.New("audit log entries are append-only")

type AuditLog struct {
	ID           string          `gorm:"primaryKey;size:26"`
	ActorID      *int64          `gorm:"column:actor_id;index"`
	ActorEmail   string          `gorm:"column:actor_email;index;not null"`
	ActionType   string          `gorm:"column:action_type;index;not null"`
	ResourceType string          `gorm:"column:resource_type;index;not null"`
	Outcome      string          `gorm:"column:outcome;not null"`
	Reason       string          `gorm:"column:reason"`
	Payload      json.RawMessage `gorm:"column:payload;type:jsonb"`
	CreatedAt    time.Time       `gorm:"column:created_at;index;not null"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (AuditLog) BeforeUpdate(*gorm.DB) error {
	return ErrImmutable
}

func (AuditLog) BeforeDelete(*gorm.DB) error {
	return ErrImmutable
}
