package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/pkg/logger"
	"github.com/frahmantamala/backoffice/pkg/metrics"
)

// Decision is an allow outcome; Bypass marks an allow granted by the super-role alone.
type Decision struct {
	Allowed bool
	Bypass  bool
}

type Gate struct {
	resolver GrantResolver
	logger   *slog.Logger
}

func NewGate(resolver GrantResolver, logger *slog.Logger) *Gate {
	return &Gate{resolver: resolver, logger: logger}
}

// Check decides whether identity may exercise permission. Every deny is returned as an
// *internal.AppError: 401 without identity, 403 for unknown or missing permissions,
// 503 when the grant cannot be resolved.
func (g *Gate) Check(ctx context.Context, identity *internal.Identity, permission Permission) (Decision, error) {
	lg := logger.FromOr(ctx, g.logger)

	if identity == nil || identity.UserID == 0 {
		metrics.AuthzDecisions.WithLabelValues(string(permission), "unauthenticated").Inc()
		return Decision{}, internal.ErrMissingToken
	}

	if !IsKnown(permission) {
		lg.Error("authorization requested for permission outside the catalog",
			"permission", permission, "user_id", identity.UserID)
		metrics.AuthzDecisions.WithLabelValues(string(permission), "unknown_permission").Inc()
		return Decision{}, internal.ErrInsufficientPrivilege
	}

	grant, err := g.resolver.Resolve(ctx, identity.RoleID)
	if err != nil {
		lg.Error("privilege resolution failed, denying",
			"permission", permission, "role_id", identity.RoleID, "error", err)
		metrics.AuthzDecisions.WithLabelValues(string(permission), "unavailable").Inc()
		return Decision{}, internal.NewStoreUnavailableError(err)
	}

	if grant.Super {
		lg.Info("super-role bypass", "permission", permission, "user_id", identity.UserID, "role_id", identity.RoleID)
		metrics.AuthzDecisions.WithLabelValues(string(permission), "bypass").Inc()
		return Decision{Allowed: true, Bypass: true}, nil
	}

	if grant.Has(permission) {
		metrics.AuthzDecisions.WithLabelValues(string(permission), "allow").Inc()
		return Decision{Allowed: true}, nil
	}

	lg.Warn("access denied: insufficient privilege",
		"user_id", identity.UserID, "role_id", identity.RoleID, "required_permission", permission)
	metrics.AuthzDecisions.WithLabelValues(string(permission), "deny").Inc()
	return Decision{}, internal.ErrInsufficientPrivilege
}
