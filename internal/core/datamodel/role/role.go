package role

import "time"

type Role struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	IsSuper     bool      `gorm:"column:is_super;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// RolePrivilege grants one catalog permission to a role.
type RolePrivilege struct {
	ID         int64     `gorm:"primaryKey"`
	RoleID     int64     `gorm:"column:role_id;not null;uniqueIndex:idx_role_privileges_role_permission"`
	Permission string    `gorm:"column:permission;not null;uniqueIndex:idx_role_privileges_role_permission"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RolePrivilege) TableName() string {
	return "role_privileges"
}
