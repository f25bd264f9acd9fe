package auth

import (
	"fmt"
	"sort"
	"strings"
)

// Permission is a code from the process-wide catalog, e.g. "categories.delete".
type Permission string

const (
	PermUsersView   Permission = "users.view"
	PermUsersCreate Permission = "users.create"
	PermUsersUpdate Permission = "users.update"
	PermUsersDelete Permission = "users.delete"

	PermRolesView   Permission = "roles.view"
	PermRolesCreate Permission = "roles.create"
	PermRolesUpdate Permission = "roles.update"
	PermRolesDelete Permission = "roles.delete"

	PermCategoriesView   Permission = "categories.view"
	PermCategoriesCreate Permission = "categories.create"
	PermCategoriesUpdate Permission = "categories.update"
	PermCategoriesDelete Permission = "categories.delete"

	PermAuditLogsView Permission = "auditlogs.view"

	PermStatsView Permission = "stats.view"
)

type PermissionInfo struct {
	Code        Permission `json:"key"`
	Group       string     `json:"group"`
	Description string     `json:"description"`
}

type PermissionGroup struct {
	Name        string           `json:"name"`
	Permissions []PermissionInfo `json:"permissions"`
}

var catalog = []PermissionInfo{
	{PermUsersView, "Users", "List users"},
	{PermUsersCreate, "Users", "Create users"},
	{PermUsersUpdate, "Users", "Update users"},
	{PermUsersDelete, "Users", "Deactivate users"},

	{PermRolesView, "Roles", "List roles and the permission catalog"},
	{PermRolesCreate, "Roles", "Create roles"},
	{PermRolesUpdate, "Roles", "Update roles and their privileges"},
	{PermRolesDelete, "Roles", "Deactivate roles"},

	{PermCategoriesView, "Categories", "List categories"},
	{PermCategoriesCreate, "Categories", "Create categories"},
	{PermCategoriesUpdate, "Categories", "Update categories"},
	{PermCategoriesDelete, "Categories", "Delete categories"},

	{PermAuditLogsView, "AuditLogs", "Query the audit trail"},

	{PermStatsView, "Dashboard", "View dashboard counts"},
}

var known = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(catalog))
	for _, p := range catalog {
		m[p.Code] = struct{}{}
	}
	return m
}()

func Catalog() []PermissionInfo {
	out := make([]PermissionInfo, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogGroups returns the catalog grouped by resource, in catalog order.
func CatalogGroups() []PermissionGroup {
	var groups []PermissionGroup
	index := map[string]int{}
	for _, p := range catalog {
		i, ok := index[p.Group]
		if !ok {
			i = len(groups)
			index[p.Group] = i
			groups = append(groups, PermissionGroup{Name: p.Group})
		}
		groups[i].Permissions = append(groups[i].Permissions, p)
	}
	return groups
}

func IsKnown(p Permission) bool {
	_, ok := known[p]
	return ok
}

func ParsePermission(s string) (Permission, bool) {
	p := Permission(strings.TrimSpace(s))
	return p, IsKnown(p)
}

// CheckCatalog verifies that every declared permission exists and returns the catalog
// entries that nothing declares.
func CheckCatalog(declared []Permission) ([]Permission, error) {
	used := make(map[Permission]struct{}, len(declared))
	var unknown []string
	for _, p := range declared {
		if !IsKnown(p) {
			unknown = append(unknown, string(p))
			continue
		}
		used[p] = struct{}{}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("permissions not in catalog: %s", strings.Join(unknown, ", "))
	}

	var unused []Permission
	for _, p := range catalog {
		if _, ok := used[p.Code]; !ok {
			unused = append(unused, p.Code)
		}
	}
	return unused, nil
}
