package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/pkg/ids"
	"github.com/frahmantamala/backoffice/pkg/metrics"
)

const endOfDay = 24*time.Hour - time.Nanosecond

type ServiceAPI interface {
	Record(ctx context.Context, actor internal.Identity, action ActionType, resource ResourceType, payload interface{}) (*Entry, error)
	RecordLogin(ctx context.Context, attempt LoginAttempt) (*Entry, error)
	List(ctx context.Context, q Query) (*Page, error)
}

// Recorder appends audit entries and serves the clamped audit query.
type Recorder struct {
	repo         RepositoryAPI
	logger       *slog.Logger
	now          func() time.Time
	defaultLimit int
	maxLimit     int
}

type Option func(*Recorder)

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

func NewRecorder(repo RepositoryAPI, logger *slog.Logger, cfg internal.AuditConfig, opts ...Option) *Recorder {
	defaultLimit, maxLimit := cfg.PageLimits()
	r := &Recorder{
		repo:         repo,
		logger:       logger,
		now:          time.Now,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends a successful mutation by actor. The write joins any transaction on ctx.
func (r *Recorder) Record(ctx context.Context, actor internal.Identity, action ActionType, resource ResourceType, payload interface{}) (*Entry, error) {
	if !action.Valid() || action == ActionLogin {
		return nil, fmt.Errorf("audit: invalid action type %q", action)
	}
	if !resource.Valid() {
		return nil, fmt.Errorf("audit: invalid resource type %q", resource)
	}

	var actorID *int64
	if actor.UserID != 0 {
		id := actor.UserID
		actorID = &id
	}

	return r.insert(ctx, Entry{
		ActorID:    actorID,
		ActorEmail: actor.Email,
		Action:     action,
		Resource:   resource,
		Outcome:    OutcomeSuccess,
	}, payload)
}

// RecordLogin appends one entry per login attempt, successful or not.
func (r *Recorder) RecordLogin(ctx context.Context, attempt LoginAttempt) (*Entry, error) {
	entry := Entry{
		ActorEmail: strings.ToLower(strings.TrimSpace(attempt.Email)),
		Action:     ActionLogin,
		Resource:   ResourceUsers,
		Outcome:    OutcomeSuccess,
	}
	if attempt.UserID != 0 {
		id := attempt.UserID
		entry.ActorID = &id
	}
	if !attempt.Success {
		entry.Outcome = OutcomeFailure
		entry.Reason = attempt.Reason
	}

	payload := map[string]interface{}{}
	if attempt.TraceID != "" {
		payload["request_id"] = attempt.TraceID
	}
	return r.insert(ctx, entry, payload)
}

func (r *Recorder) insert(ctx context.Context, entry Entry, payload interface{}) (*Entry, error) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("audit: marshal payload: %w", err)
	}

	now := r.now().UTC()
	entry.ID = ids.NewAt(now)
	entry.Payload = raw
	entry.CreatedAt = now

	if err := r.repo.Insert(ctx, ToDataModel(entry)); err != nil {
		metrics.AuditWrites.WithLabelValues(string(entry.Action), "error").Inc()
		return nil, err
	}
	metrics.AuditWrites.WithLabelValues(string(entry.Action), string(entry.Outcome)).Inc()
	return &entry, nil
}

// Normalize validates q and applies the paging rules: page < 1 becomes 1, a missing limit
// becomes the default and anything above the ceiling is clamped to it. Page is capped so
// the row offset cannot overflow.
func (r *Recorder) Normalize(q Query) (Filter, int, int, error) {
	return NormalizeQuery(q, r.defaultLimit, r.maxLimit)
}

func NormalizeQuery(q Query, defaultLimit, maxLimit int) (Filter, int, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if lastPage := math.MaxInt/limit + 1; page > lastPage {
		page = lastPage
	}

	var f Filter
	if q.BeginDate != nil {
		from := startOfDay(*q.BeginDate)
		f.From = &from
	}
	if q.EndDate != nil {
		to := startOfDay(*q.EndDate).Add(endOfDay)
		f.To = &to
	}

	if a := strings.TrimSpace(q.Action); a != "" {
		f.Action = ActionType(a)
		if !f.Action.Valid() {
			return Filter{}, 0, 0, invalidFilter("action")
		}
	}
	if res := strings.TrimSpace(q.Resource); res != "" {
		f.Resource = ResourceType(res)
		if !f.Resource.Valid() {
			return Filter{}, 0, 0, invalidFilter("resource")
		}
	}
	f.Email = strings.ToLower(strings.TrimSpace(q.Email))

	return f, page, limit, nil
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func invalidFilter(field string) *internal.AppError {
	return internal.NewValidationError(internal.MsgInvalidAuditFilter, internal.ErrCodeInvalidFilter, "Invalid audit filter: "+field).
		WithParams(field)
}

// List returns entries newest first with the total matching count.
func (r *Recorder) List(ctx context.Context, q Query) (*Page, error) {
	filter, page, limit, err := r.Normalize(q)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	rows, err := r.repo.Query(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := r.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = FromDataModel(row)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Page{
		Entries:    entries,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}
