package role

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/core/common/validation"
	roleDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/role"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/internal/store"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Role, error)
	Create(ctx context.Context, dto CreateRoleDTO) (*Role, error)
	Update(ctx context.Context, id int64, dto UpdateRoleDTO) (*Role, error)
	Deactivate(ctx context.Context, id int64) (*Role, error)
	SetPrivileges(ctx context.Context, id int64, dto SetPrivilegesDTO) (*Role, *PrivilegeChange, error)
}

type Publisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   RepositoryAPI
	bus    Publisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Role, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	privileges, err := s.repo.Privileges(ctx, ids...)
	if err != nil {
		return nil, err
	}

	roles := make([]*Role, 0, len(rows))
	for i := range rows {
		roles = append(roles, FromDataModel(&rows[i], privileges[rows[i].ID]))
	}
	return roles, nil
}

func (s *Service) Create(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	name := strings.TrimSpace(dto.Name)
	if verr := validateName(name); verr != nil {
		return nil, verr
	}
	perms, err := parsePermissions(dto.Permissions)
	if err != nil {
		return nil, err
	}

	row := &roleDatamodel.Role{
		Name:        name,
		Description: strings.TrimSpace(dto.Description),
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	if err := s.repo.ReplacePrivileges(ctx, row.ID, perms); err != nil {
		return nil, err
	}

	logger.FromOr(ctx, s.logger).Info("role created", "role_id", row.ID, "permissions", len(perms))
	return FromDataModel(row, perms), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateRoleDTO) (*Role, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasActive := row.IsActive

	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if verr := validateName(name); verr != nil {
			return nil, verr
		}
		row.Name = name
	}
	if dto.Description != nil {
		row.Description = strings.TrimSpace(*dto.Description)
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}

	switch {
	case wasActive && !row.IsActive:
		s.publishAfterCommit(ctx, events.NewRoleDeactivatedEvent(id))
	case !wasActive && row.IsActive:
		s.publishAfterCommit(ctx, events.NewRolePrivilegesChangedEvent(id))
	}
	return s.withPrivileges(ctx, row)
}

// Deactivate is the only form of role deletion. Every grant derived from the role is void
// from the next request on.
func (s *Service) Deactivate(ctx context.Context, id int64) (*Role, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	row.IsActive = false
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}

	s.publishAfterCommit(ctx, events.NewRoleDeactivatedEvent(id))
	logger.FromOr(ctx, s.logger).Info("role deactivated", "role_id", id)
	return s.withPrivileges(ctx, row)
}

// SetPrivileges replaces the role's permission set.
func (s *Service) SetPrivileges(ctx context.Context, id int64, dto SetPrivilegesDTO) (*Role, *PrivilegeChange, error) {
	perms, err := parsePermissions(dto.Permissions)
	if err != nil {
		return nil, nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	current, err := s.repo.Privileges(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	before := current[id]

	if err := s.repo.ReplacePrivileges(ctx, id, perms); err != nil {
		return nil, nil, err
	}
	s.publishAfterCommit(ctx, events.NewRolePrivilegesChangedEvent(id))

	change := diff(id, before, perms)
	logger.FromOr(ctx, s.logger).Info("role privileges replaced",
		"role_id", id, "added", len(change.Added), "removed", len(change.Removed))
	return FromDataModel(row, perms), change, nil
}

func (s *Service) withPrivileges(ctx context.Context, row *roleDatamodel.Role) (*Role, error) {
	privileges, err := s.repo.Privileges(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row, privileges[row.ID]), nil
}

// publishAfterCommit invalidates cached grants once the change is durable. A rolled back
// transaction publishes nothing.
func (s *Service) publishAfterCommit(ctx context.Context, event events.Event) {
	store.AfterCommit(ctx, func() {
		if err := s.bus.PublishSync(context.WithoutCancel(ctx), event); err != nil {
			logger.FromOr(ctx, s.logger).Error("role change event handler failed",
				"event_type", event.EventType(), "error", err)
		}
	})
}

func validateName(name string) *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", name).Required().MaxLength(validation.NameMaxLength)
	return v.Validate()
}

// parsePermissions validates codes against the catalog and returns them sorted and de-duplicated.
func parsePermissions(codes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(codes))
	var out, unknown []string
	for _, code := range codes {
		p, ok := auth.ParsePermission(code)
		if !ok {
			unknown = append(unknown, code)
			continue
		}
		if _, dup := seen[string(p)]; dup {
			continue
		}
		seen[string(p)] = struct{}{}
		out = append(out, string(p))
	}
	if len(unknown) > 0 {
		return nil, internal.NewValidationError(internal.MsgUnknownPermission, internal.ErrCodeUnknownPerm, "Unknown permission").
			WithParams(strings.Join(unknown, ", ")).
			WithDetails(map[string][]string{"unknown": unknown})
	}
	sort.Strings(out)
	return out, nil
}

func diff(roleID int64, before, after []string) *PrivilegeChange {
	inBefore := make(map[string]struct{}, len(before))
	for _, p := range before {
		inBefore[p] = struct{}{}
	}
	inAfter := make(map[string]struct{}, len(after))
	for _, p := range after {
		inAfter[p] = struct{}{}
	}

	change := &PrivilegeChange{
		RoleID:  roleID,
		Before:  toPermissions(before),
		After:   toPermissions(after),
		Added:   []auth.Permission{},
		Removed: []auth.Permission{},
	}
	for _, p := range after {
		if _, ok := inBefore[p]; !ok {
			change.Added = append(change.Added, auth.Permission(p))
		}
	}
	for _, p := range before {
		if _, ok := inAfter[p]; !ok {
			change.Removed = append(change.Removed, auth.Permission(p))
		}
	}
	return change
}

func toPermissions(codes []string) []auth.Permission {
	out := make([]auth.Permission, 0, len(codes))
	for _, c := range codes {
		out = append(out, auth.Permission(c))
	}
	return out
}
