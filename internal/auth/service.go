package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/audit"
	"github.com/frahmantamala/backoffice/internal/core/common/validation"
	"github.com/frahmantamala/backoffice/pkg/logger"
	"github.com/frahmantamala/backoffice/pkg/metrics"
)

// LoginRecorder is the slice of the audit recorder that login needs.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, attempt audit.LoginAttempt) (*audit.Entry, error)
}

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	RejectLogin(ctx context.Context, reason string)
	Authenticate(ctx context.Context, bearer string) (internal.Identity, error)
	CurrentUser(ctx context.Context, identity internal.Identity) (*ProfileResponse, error)
}

// Service is the main auth service with dependencies
type Service struct {
	store    CredentialStore
	tokens   TokenGenerator
	resolver GrantResolver
	recorder LoginRecorder
	logger   *slog.Logger
	timeout  time.Duration
}

type ServiceOption func(*Service)

// WithQueryTimeout bounds each credential lookup and login audit write.
func WithQueryTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = timeout }
}

func NewService(store CredentialStore, tokens TokenGenerator, resolver GrantResolver, recorder LoginRecorder, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		tokens:   tokens,
		resolver: resolver,
		recorder: recorder,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// detach keeps the request values but not its cancellation, so a client that hangs up
// mid-login cannot drop the attempt's audit entry.
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return internal.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

// Login verifies credentials and issues a token. Every attempt leaves one Login audit entry;
// a success is only reported once its entry is stored.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	attempt := audit.LoginAttempt{Email: email, TraceID: internal.TraceIDFromContext(ctx)}

	if verr := validation.ValidateCredentials(email, dto.Password); verr != nil {
		s.fail(ctx, attempt, audit.ReasonValidationFailed)
		return nil, verr
	}

	lookupCtx, cancel := s.detach(ctx)
	account, err := s.store.FindUserByEmail(lookupCtx, email)
	cancel()
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.fail(ctx, attempt, audit.ReasonUserNotFound)
			return nil, internal.ErrInvalidCredentials
		}
		s.fail(ctx, attempt, audit.ReasonStoreUnavailable)
		return nil, err
	}
	attempt.UserID = account.ID

	if !CheckPassword(account.PasswordHash, dto.Password) {
		s.fail(ctx, attempt, audit.ReasonInvalidPassword)
		return nil, internal.ErrInvalidCredentials
	}
	if !account.IsActive {
		s.fail(ctx, attempt, audit.ReasonUserInactive)
		return nil, internal.ErrUserInactive
	}

	token, expiresAt, err := s.tokens.Issue(TokenSubject{UserID: account.ID, RoleID: account.RoleID, Email: account.Email})
	if err != nil {
		return nil, internal.NewInternalError("Failed to issue token", err)
	}

	attempt.Success = true
	auditCtx, cancel := s.detach(ctx)
	defer cancel()
	if _, err := s.recorder.RecordLogin(auditCtx, attempt); err != nil {
		logger.FromOr(ctx, s.logger).Error("login audit write failed, refusing login",
			"critical", true, "user_id", account.ID, "error", err)
		return nil, internal.NewStoreUnavailableError(err)
	}

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: toUserView(account)}, nil
}

// RejectLogin audits an attempt whose request could not even be read.
func (s *Service) RejectLogin(ctx context.Context, reason string) {
	s.fail(ctx, audit.LoginAttempt{TraceID: internal.TraceIDFromContext(ctx)}, reason)
}

func (s *Service) fail(ctx context.Context, attempt audit.LoginAttempt, reason string) {
	metrics.AuthnFailures.WithLabelValues(reason).Inc()
	attempt.Reason = reason

	auditCtx, cancel := s.detach(ctx)
	defer cancel()
	if _, err := s.recorder.RecordLogin(auditCtx, attempt); err != nil {
		logger.FromOr(ctx, s.logger).Error("failed login could not be audited",
			"critical", true, "email", attempt.Email, "reason", reason, "error", err)
	}
}

// Authenticate turns a bearer token into an identity. Malformed and tampered tokens are
// both reported as INVALID_TOKEN. The account is reloaded on every call: the role comes
// from the user row, not the token, and a deactivated or deleted user is refused.
func (s *Service) Authenticate(ctx context.Context, bearer string) (internal.Identity, error) {
	if strings.TrimSpace(bearer) == "" {
		metrics.AuthnFailures.WithLabelValues("missing_token").Inc()
		return internal.Identity{}, internal.ErrMissingToken
	}

	claims, err := s.tokens.Verify(bearer)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			metrics.AuthnFailures.WithLabelValues("expired_token").Inc()
			return internal.Identity{}, internal.ErrExpiredToken
		}
		metrics.AuthnFailures.WithLabelValues("invalid_token").Inc()
		return internal.Identity{}, internal.ErrInvalidToken
	}

	identity, err := claims.Identity()
	if err != nil {
		return internal.Identity{}, internal.ErrInvalidToken
	}

	lookupCtx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()
	account, err := s.store.FindUserByID(lookupCtx, identity.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			metrics.AuthnFailures.WithLabelValues("unknown_subject").Inc()
			return internal.Identity{}, internal.ErrInvalidToken
		}
		return internal.Identity{}, err
	}
	if !account.IsActive {
		metrics.AuthnFailures.WithLabelValues(audit.ReasonUserInactive).Inc()
		return internal.Identity{}, internal.ErrUserInactive
	}

	identity.RoleID = account.RoleID
	identity.Email = account.Email
	return identity, nil
}

func (s *Service) CurrentUser(ctx context.Context, identity internal.Identity) (*ProfileResponse, error) {
	account, err := s.store.FindUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	grant, err := s.resolver.Resolve(ctx, account.RoleID)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}

	perms := grant.List()
	if grant.Super {
		perms = make([]Permission, 0, len(catalog))
		for _, p := range catalog {
			perms = append(perms, p.Code)
		}
	}
	return &ProfileResponse{User: toUserView(account), Permissions: perms, SuperRole: grant.Super}, nil
}
