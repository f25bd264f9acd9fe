package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Grant is the resolved permission set of a role.
type Grant struct {
	Permissions map[Permission]struct{}
	Super       bool
}

func (g Grant) Has(p Permission) bool {
	_, ok := g.Permissions[p]
	return ok
}

func (g Grant) List() []Permission {
	out := make([]Permission, 0, len(g.Permissions))
	for p := range g.Permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GrantResolver is the read side the gate depends on.
type GrantResolver interface {
	Resolve(ctx context.Context, roleID int64) (Grant, error)
}

type cacheEntry struct {
	grant    Grant
	loadedAt time.Time
	gen      uint64
}

// PrivilegeResolver caches grants per role. Invalidate bumps the role's generation so a load
// that started before the bump is handed to its callers but never cached.
type PrivilegeResolver struct {
	store   PrivilegeStore
	logger  *slog.Logger
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[int64]cacheEntry
	gens    map[int64]uint64

	group singleflight.Group
}

type ResolverOption func(*PrivilegeResolver)

// WithTTL bounds how long a cached grant is trusted; zero keeps entries until invalidated.
func WithTTL(ttl time.Duration) ResolverOption {
	return func(r *PrivilegeResolver) { r.ttl = ttl }
}

// WithStoreTimeout bounds each store round trip made by a load.
func WithStoreTimeout(timeout time.Duration) ResolverOption {
	return func(r *PrivilegeResolver) { r.timeout = timeout }
}

func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *PrivilegeResolver) { r.now = now }
}

func NewPrivilegeResolver(store PrivilegeStore, logger *slog.Logger, opts ...ResolverOption) *PrivilegeResolver {
	r := &PrivilegeResolver{
		store:   store,
		logger:  logger,
		timeout: 3 * time.Second,
		now:     time.Now,
		entries: make(map[int64]cacheEntry),
		gens:    make(map[int64]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the grant for roleID. Missing or inactive roles resolve to an empty grant;
// store failures are returned as errors and never cached.
func (r *PrivilegeResolver) Resolve(ctx context.Context, roleID int64) (Grant, error) {
	r.mu.RLock()
	entry, ok := r.entries[roleID]
	gen := r.gens[roleID]
	r.mu.RUnlock()

	if ok && entry.gen == gen && !r.expired(entry) {
		metrics.PrivilegeCache.WithLabelValues("hit").Inc()
		return entry.grant, nil
	}
	metrics.PrivilegeCache.WithLabelValues("miss").Inc()

	key := fmt.Sprintf("%d:%d", roleID, gen)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		loadCtx, cancel := internal.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		grant, err := r.load(loadCtx, roleID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.gens[roleID] == gen {
			r.entries[roleID] = cacheEntry{grant: grant, loadedAt: r.now(), gen: gen}
		}
		r.mu.Unlock()
		return grant, nil
	})
	if err != nil {
		return Grant{}, err
	}
	return v.(Grant), nil
}

func (r *PrivilegeResolver) expired(entry cacheEntry) bool {
	return r.ttl > 0 && r.now().Sub(entry.loadedAt) >= r.ttl
}

func (r *PrivilegeResolver) load(ctx context.Context, roleID int64) (Grant, error) {
	empty := Grant{Permissions: map[Permission]struct{}{}}

	role, err := r.store.FindRoleByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, internal.ErrRoleNotFound) {
			return empty, nil
		}
		return Grant{}, err
	}
	if !role.IsActive {
		return empty, nil
	}
	if role.IsSuper {
		return Grant{Permissions: map[Permission]struct{}{}, Super: true}, nil
	}

	codes, err := r.store.ListRolePrivileges(ctx, roleID)
	if err != nil {
		return Grant{}, err
	}

	grant := Grant{Permissions: make(map[Permission]struct{}, len(codes))}
	for _, code := range codes {
		p, ok := ParsePermission(code)
		if !ok {
			r.logger.Warn("ignoring privilege outside the catalog", "role_id", roleID, "permission", code)
			continue
		}
		grant.Permissions[p] = struct{}{}
	}
	return grant, nil
}

// Invalidate drops the cached grant for roleID and fences out in-flight loads.
func (r *PrivilegeResolver) Invalidate(roleID int64) {
	r.mu.Lock()
	r.gens[roleID]++
	delete(r.entries, roleID)
	r.mu.Unlock()
	r.logger.Debug("privilege cache invalidated", "role_id", roleID)
}

// Subscribe wires role change events to invalidation.
func (r *PrivilegeResolver) Subscribe(bus *events.EventBus) {
	handler := func(_ context.Context, e events.Event) error {
		changed, ok := e.(*events.RoleChangedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", e)
		}
		r.Invalidate(changed.RoleID)
		return nil
	}
	bus.Subscribe(events.EventTypeRolePrivilegesChanged, handler)
	bus.Subscribe(events.EventTypeRoleDeactivated, handler)
}
