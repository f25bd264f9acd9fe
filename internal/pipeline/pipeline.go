// Package pipeline runs every protected operation through the same sequence:
// authenticate, authorize, execute, audit, respond.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/audit"
	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/transport"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

// Operation declares what a route needs. Action is empty for reads, which are neither
// wrapped in a transaction nor audited. AuthenticatedOnly skips the permission check;
// Public skips authentication as well, and its action names the audit actor itself.
type Operation struct {
	Name              string
	Permission        auth.Permission
	Action            audit.ActionType
	Resource          audit.ResourceType
	AuthenticatedOnly bool
	Public            bool
}

func (op Operation) Mutating() bool {
	return op.Action != ""
}

// Gated reports whether op requires a catalog permission.
func (op Operation) Gated() bool {
	return !op.Public && !op.AuthenticatedOnly
}

type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (internal.Identity, error)
}

type Authorizer interface {
	Check(ctx context.Context, identity *internal.Identity, permission auth.Permission) (auth.Decision, error)
}

type Recorder interface {
	Record(ctx context.Context, actor internal.Identity, action audit.ActionType, resource audit.ResourceType, payload interface{}) (*audit.Entry, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Pipeline struct {
	*transport.BaseHandler
	authn    Authenticator
	gate     Authorizer
	recorder Recorder
	tx       Transactor
	timeout  time.Duration

	mu       sync.Mutex
	declared []Operation
}

func New(base *transport.BaseHandler, authn Authenticator, gate Authorizer, recorder Recorder, tx Transactor, timeout time.Duration) *Pipeline {
	return &Pipeline{
		BaseHandler: base,
		authn:       authn,
		gate:        gate,
		recorder:    recorder,
		tx:          tx,
		timeout:     timeout,
	}
}

// Handle registers op and returns the handler that runs action behind it.
func (p *Pipeline) Handle(op Operation, action transport.Action) http.HandlerFunc {
	p.mu.Lock()
	p.declared = append(p.declared, op)
	p.mu.Unlock()

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var identity internal.Identity
		if op.Public {
			ctx = logger.With(ctx, "operation", op.Name)
		} else {
			var err error
			identity, err = p.authn.Authenticate(ctx, transport.BearerToken(r))
			if err != nil {
				p.WriteAppError(w, r, err)
				return
			}
			ctx = internal.ContextWithIdentity(ctx, identity)
			ctx = logger.With(ctx, "user_id", identity.UserID, "operation", op.Name)
		}
		r = r.WithContext(ctx)

		var decision auth.Decision
		if op.Gated() {
			var err error
			decision, err = p.gate.Check(ctx, &identity, op.Permission)
			if err != nil {
				p.WriteAppError(w, r, err)
				return
			}
		}

		execCtx, cancel := internal.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()

		result, err := p.execute(execCtx, op, decision, r, identity, action)
		if err != nil {
			p.WriteAppError(w, r, err)
			return
		}
		if result.Status == http.StatusNoContent {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		p.WriteSuccess(w, result.Status, result.Body)
	}
}

func (p *Pipeline) execute(ctx context.Context, op Operation, decision auth.Decision, r *http.Request, actor internal.Identity, action transport.Action) (result *transport.Result, err error) {
	lg := logger.FromOr(ctx, p.Logger)

	defer func() {
		if rec := recover(); rec != nil {
			lg.Error("panic in protected action", "panic", rec, "stack", string(debug.Stack()))
			result, err = nil, internal.NewInternalError("Unexpected failure", fmt.Errorf("panic: %v", rec))
		}
	}()

	if !op.Mutating() {
		res, err := action(ctx, r, actor)
		if err != nil {
			return nil, err
		}
		return normalize(res), nil
	}

	err = p.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		res, err := action(txCtx, r, actor)
		if err != nil {
			return err
		}
		res = normalize(res)
		if res.Actor != nil {
			actor = *res.Actor
		}

		if _, err := p.recorder.Record(txCtx, actor, op.Action, op.Resource, auditPayload(txCtx, res, decision)); err != nil {
			lg.Error("audit write failed, rolling back mutation",
				"critical", true, "action", op.Action, "resource", op.Resource, "error", err)
			return internal.NewStoreUnavailableError(err)
		}

		if decision.Bypass {
			lg.Info("mutation authorized by super-role bypass", "action", op.Action, "resource", op.Resource)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func normalize(res *transport.Result) *transport.Result {
	if res == nil {
		return &transport.Result{Status: http.StatusNoContent}
	}
	if res.Status == 0 {
		res.Status = http.StatusOK
	}
	return res
}

func auditPayload(ctx context.Context, res *transport.Result, decision auth.Decision) map[string]interface{} {
	payload := map[string]interface{}{"data": res.Payload}
	if traceID := internal.TraceIDFromContext(ctx); traceID != "" {
		payload["request_id"] = traceID
	}
	if decision.Bypass {
		payload["super_role_bypass"] = true
	}
	return payload
}

// Declared lists every operation registered so far.
func (p *Pipeline) Declared() []Operation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Operation(nil), p.declared...)
}

// Permissions lists the permissions required by declared operations.
func (p *Pipeline) Permissions() []auth.Permission {
	var out []auth.Permission
	for _, op := range p.Declared() {
		if op.Gated() {
			out = append(out, op.Permission)
		}
	}
	return out
}

// Validate checks the declared permissions against the catalog and logs catalog entries
// that no route uses.
func (p *Pipeline) Validate(lg *slog.Logger) error {
	unused, err := auth.CheckCatalog(p.Permissions())
	if err != nil {
		return err
	}
	for _, perm := range unused {
		lg.Warn("permission in catalog is not required by any route", "permission", perm)
	}
	return nil
}
