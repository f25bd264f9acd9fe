package rest

import (
	"github.com/frahmantamala/backoffice/internal/audit"
	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/pipeline"
)

// Pipeline operations. Each route below is registered with exactly one of these.
var (
	OpUsersRegister = pipeline.Operation{Name: "users.register", Public: true, Action: audit.ActionAdd, Resource: audit.ResourceUsers}

	OpAuthMe     = pipeline.Operation{Name: "auth.me", AuthenticatedOnly: true}
	OpAuthLogout = pipeline.Operation{Name: "auth.logout", AuthenticatedOnly: true}

	OpUsersList   = pipeline.Operation{Name: "users.list", Permission: auth.PermUsersView}
	OpUsersCreate = pipeline.Operation{Name: "users.create", Permission: auth.PermUsersCreate, Action: audit.ActionAdd, Resource: audit.ResourceUsers}
	OpUsersUpdate = pipeline.Operation{Name: "users.update", Permission: auth.PermUsersUpdate, Action: audit.ActionUpdate, Resource: audit.ResourceUsers}
	OpUsersDelete = pipeline.Operation{Name: "users.delete", Permission: auth.PermUsersDelete, Action: audit.ActionDelete, Resource: audit.ResourceUsers}

	OpRolesList          = pipeline.Operation{Name: "roles.list", Permission: auth.PermRolesView}
	OpRolesCatalog       = pipeline.Operation{Name: "roles.permissions", Permission: auth.PermRolesView}
	OpRolesCreate        = pipeline.Operation{Name: "roles.create", Permission: auth.PermRolesCreate, Action: audit.ActionAdd, Resource: audit.ResourceRoles}
	OpRolesUpdate        = pipeline.Operation{Name: "roles.update", Permission: auth.PermRolesUpdate, Action: audit.ActionUpdate, Resource: audit.ResourceRoles}
	OpRolesDelete        = pipeline.Operation{Name: "roles.delete", Permission: auth.PermRolesDelete, Action: audit.ActionDelete, Resource: audit.ResourceRoles}
	OpRolesSetPrivileges = pipeline.Operation{Name: "roles.privileges", Permission: auth.PermRolesUpdate, Action: audit.ActionUpdate, Resource: audit.ResourceRoles}

	OpCategoriesList   = pipeline.Operation{Name: "categories.list", Permission: auth.PermCategoriesView}
	OpCategoriesCreate = pipeline.Operation{Name: "categories.create", Permission: auth.PermCategoriesCreate, Action: audit.ActionAdd, Resource: audit.ResourceCategories}
	OpCategoriesUpdate = pipeline.Operation{Name: "categories.update", Permission: auth.PermCategoriesUpdate, Action: audit.ActionUpdate, Resource: audit.ResourceCategories}
	OpCategoriesDelete = pipeline.Operation{Name: "categories.delete", Permission: auth.PermCategoriesDelete, Action: audit.ActionDelete, Resource: audit.ResourceCategories}

	OpAuditLogsList = pipeline.Operation{Name: "auditlogs.list", Permission: auth.PermAuditLogsView}

	OpStatsDashboard = pipeline.Operation{Name: "stats.dashboard", Permission: auth.PermStatsView}
)

// Operations lists every pipeline operation, for catalog checks that run without a router.
func Operations() []pipeline.Operation {
	return []pipeline.Operation{
		OpAuthMe, OpAuthLogout,
		OpUsersRegister, OpUsersList, OpUsersCreate, OpUsersUpdate, OpUsersDelete,
		OpRolesList, OpRolesCatalog, OpRolesCreate, OpRolesUpdate, OpRolesDelete, OpRolesSetPrivileges,
		OpCategoriesList, OpCategoriesCreate, OpCategoriesUpdate, OpCategoriesDelete,
		OpAuditLogsList,
		OpStatsDashboard,
	}
}
