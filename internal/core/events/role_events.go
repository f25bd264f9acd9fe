package events

import (
	"time"

	"github.com/frahmantamala/backoffice/pkg/ids"
)

const (
	EventTypeRolePrivilegesChanged = "role.privileges_changed"
	EventTypeRoleDeactivated       = "role.deactivated"
)

// RoleChangedEvent announces that the permissions derived from a role are no longer valid.
type RoleChangedEvent struct {
	BaseEvent
	RoleID int64 `json:"role_id"`
}

func NewRolePrivilegesChangedEvent(roleID int64) *RoleChangedEvent {
	return newRoleEvent(EventTypeRolePrivilegesChanged, roleID)
}

func NewRoleDeactivatedEvent(roleID int64) *RoleChangedEvent {
	return newRoleEvent(EventTypeRoleDeactivated, roleID)
}

func newRoleEvent(eventType string, roleID int64) *RoleChangedEvent {
	return &RoleChangedEvent{
		BaseEvent: BaseEvent{
			ID:        ids.New(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
		},
		RoleID: roleID,
	}
}
