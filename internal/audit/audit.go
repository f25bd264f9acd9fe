package audit

import (
	"context"
	"encoding/json"
	"time"

	datamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/audit"
)

type ActionType string

const (
	ActionAdd    ActionType = "Add"
	ActionUpdate ActionType = "Update"
	ActionDelete ActionType = "Delete"
	ActionLogin  ActionType = "Login"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionAdd, ActionUpdate, ActionDelete, ActionLogin:
		return true
	}
	return false
}

type ResourceType string

const (
	ResourceUsers      ResourceType = "Users"
	ResourceRoles      ResourceType = "Roles"
	ResourceCategories ResourceType = "Categories"
)

func (r ResourceType) Valid() bool {
	switch r {
	case ResourceUsers, ResourceRoles, ResourceCategories:
		return true
	}
	return false
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Login failure reasons.
const (
	ReasonValidationFailed = "validation_failed"
	ReasonUserNotFound     = "user_not_found"
	ReasonUserInactive     = "user_inactive"
	ReasonInvalidPassword  = "invalid_password"
	ReasonStoreUnavailable = "store_unavailable"
)

type Entry struct {
	ID         string          `json:"id"`
	ActorID    *int64          `json:"actor_id"`
	ActorEmail string          `json:"email"`
	Action     ActionType      `json:"action"`
	Resource   ResourceType    `json:"resource"`
	Outcome    Outcome         `json:"outcome"`
	Reason     string          `json:"reason,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// LoginAttempt describes one login try. UserID is zero when the email matched nobody.
type LoginAttempt struct {
	UserID  int64
	Email   string
	Success bool
	Reason  string
	TraceID string
}

// Query is the caller-facing audit search; Normalize turns it into a Filter.
type Query struct {
	Page      int
	Limit     int
	BeginDate *time.Time
	EndDate   *time.Time
	Action    string
	Resource  string
	Email     string
}

// Filter is a validated query. All set fields are ANDed.
type Filter struct {
	From     *time.Time
	To       *time.Time
	Action   ActionType
	Resource ResourceType
	Email    string
}

type Page struct {
	Entries    []Entry
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type RepositoryAPI interface {
	Insert(ctx context.Context, row *datamodel.AuditLog) error
	Query(ctx context.Context, filter Filter, offset, limit int) ([]datamodel.AuditLog, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

func FromDataModel(row datamodel.AuditLog) Entry {
	return Entry{
		ID:         row.ID,
		ActorID:    row.ActorID,
		ActorEmail: row.ActorEmail,
		Action:     ActionType(row.ActionType),
		Resource:   ResourceType(row.ResourceType),
		Outcome:    Outcome(row.Outcome),
		Reason:     row.Reason,
		Payload:    row.Payload,
		CreatedAt:  row.CreatedAt.UTC(),
	}
}

func ToDataModel(e Entry) *datamodel.AuditLog {
	return &datamodel.AuditLog{
		ID:           e.ID,
		ActorID:      e.ActorID,
		ActorEmail:   e.ActorEmail,
		ActionType:   string(e.Action),
		ResourceType: string(e.Resource),
		Outcome:      string(e.Outcome),
		Reason:       e.Reason,
		Payload:      e.Payload,
		CreatedAt:    e.CreatedAt,
	}
}
