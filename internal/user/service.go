package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, dto CreateUserDTO) (*User, error)
	Register(ctx context.Context, dto RegisterDTO) (*User, error)
	Update(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error)
	Deactivate(ctx context.Context, id int64) (*User, error)
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(rows))
	for i := range rows {
		users = append(users, FromDataModel(&rows[i]))
	}
	return users, nil
}

// Create registers a user. Emails are stored lower-cased, which makes uniqueness case-insensitive.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	name := strings.TrimSpace(dto.Name)

	v := validation.NewValidator()
	v.Field("email", email).Required().Email().MaxLength(validation.NameMaxLength)
	v.Field("name", name).Required().MaxLength(validation.NameMaxLength)
	v.Field("role_id", dto.RoleID).Required()
	if verr := v.Validate(); verr != nil {
		return nil, verr
	}
	if verr := validation.ValidatePassword(dto.Password); verr != nil {
		return nil, verr
	}
	if err := s.ensureRole(ctx, dto.RoleID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("Failed to hash password", err)
	}

	row := &userDatamodel.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		RoleID:       dto.RoleID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}

	logger.FromOr(ctx, s.logger).Info("user created", "target_user_id", row.ID, "role_id", row.RoleID)
	return FromDataModel(row), nil
}

// Register bootstraps an empty installation: it creates the first account bound to the
// super role and is refused once any user exists.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	if err := s.repo.LockRegistration(ctx); err != nil {
		return nil, err
	}
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, internal.ErrRegistrationClosed
	}

	roleID, err := s.repo.EnsureSuperRole(ctx)
	if err != nil {
		return nil, err
	}

	created, err := s.Create(ctx, CreateUserDTO{Email: dto.Email, Name: dto.Name, Password: dto.Password, RoleID: roleID})
	if err != nil {
		return nil, err
	}
	logger.FromOr(ctx, s.logger).Warn("first user registered with the super role", "target_user_id", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		v := validation.NewValidator()
		v.Field("name", name).Required().MaxLength(validation.NameMaxLength)
		if verr := v.Validate(); verr != nil {
			return nil, verr
		}
		row.Name = name
	}
	if dto.Password != nil {
		if verr := validation.ValidatePassword(*dto.Password); verr != nil {
			return nil, verr
		}
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("Failed to hash password", err)
		}
		row.PasswordHash = hash
	}
	if dto.RoleID != nil && *dto.RoleID != row.RoleID {
		if err := s.ensureRole(ctx, *dto.RoleID); err != nil {
			return nil, err
		}
		row.RoleID = *dto.RoleID
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// Deactivate is the only form of user deletion. Tokens already issued are refused from the next request on.
func (s *Service) Deactivate(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	row.IsActive = false
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}

	logger.FromOr(ctx, s.logger).Info("user deactivated", "target_user_id", id)
	return FromDataModel(row), nil
}

func (s *Service) ensureRole(ctx context.Context, roleID int64) error {
	ok, err := s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return err
	}
	if !ok {
		return internal.NewValidationFieldError("role_id", internal.MsgFieldInvalid,
			"role_id does not reference an existing role", internal.ErrCodeUnknownRole, "role_id")
	}
	return nil
}
