package listsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"vigil/internal/audit"
	"vigil/internal/listsync/metrics"
	"vigil/internal/sanctions"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

// EntityWriter is the slice of the entity store the orchestrator needs.
type EntityWriter interface {
	Upsert(ctx context.Context, e *sanctions.SanctionedEntity) error
	DeleteAbsent(ctx context.Context, sourceListID string, keepExternalIDs []string) (int, error)
}

// AuditPublisher records sync activity. Failures are logged and swallowed.
type AuditPublisher interface {
	Publish(ctx context.Context, event audit.Event) error
}

const (
	defaultFetchTimeout = 30 * time.Second
	defaultWorkers      = 4
	lockTTL             = 10 * time.Minute
)

// Service orchestrates watchlist syncs. Each list run is independently
// locked, fetched, and persisted; a full run reports per-list outcomes rather
// than failing as a whole.
type Service struct {
	registry       *Registry
	adapters       map[Format]Adapter
	entities       EntityWriter
	locker         ListLocker
	fetchTimeout   time.Duration
	workers        int
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New constructs a Service.
func New(registry *Registry, adapters map[Format]Adapter, entities EntityWriter, locker ListLocker, opts ...Option) *Service {
	s := &Service{
		registry:     registry,
		adapters:     adapters,
		entities:     entities,
		locker:       locker,
		fetchTimeout: defaultFetchTimeout,
		workers:      defaultWorkers,
		tracer:       otel.Tracer("vigil/listsync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncList runs a sync for one list. Unknown list ids are an error; a
// disabled list or a list already being synced yields a non-error Result so
// full runs can report them alongside real outcomes.
func (s *Service) SyncList(ctx context.Context, listID string) (Result, error) {
	list, ok := s.registry.Get(listID)
	if !ok {
		return Result{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("unknown list %q", listID))
	}
	result := s.syncConfigured(ctx, list)
	return result, nil
}

// SyncAll syncs every configured list concurrently and aggregates the
// outcomes. Disabled lists show up as skipped.
func (s *Service) SyncAll(ctx context.Context) Report {
	ctx, span := s.tracer.Start(ctx, "listsync.SyncAll")
	defer span.End()

	lists := s.registry.All()
	results := make([]Result, len(lists))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, list := range lists {
		g.Go(func() error {
			results[i] = s.syncConfigured(ctx, list)
			return nil
		})
	}
	_ = g.Wait()

	return BuildReport(results)
}

// Lists returns every configured list in registration order.
func (s *Service) Lists() []ListConfig {
	return s.registry.All()
}

func (s *Service) syncConfigured(ctx context.Context, list ListConfig) Result {
	if !list.Enabled {
		return Result{ListID: list.ID, Status: StatusSkipped}
	}

	ctx, span := s.tracer.Start(ctx, "listsync.Sync",
		trace.WithAttributes(attribute.String("list.id", list.ID)))
	defer span.End()

	started := time.Now()
	result := s.runSync(ctx, list)
	s.metrics.IncrementOutcome(list.ID, string(result.Status))
	s.metrics.ObserveSyncLatency(list.ID, time.Since(started))

	switch result.Status {
	case StatusSucceeded:
		s.log(ctx, slog.LevelInfo, "list sync succeeded", "list", list.ID, "records", result.Records)
		s.logAudit(ctx, audit.ActionListSynced, map[string]string{
			"list":    list.ID,
			"records": fmt.Sprint(result.Records),
		})
	case StatusFailed:
		s.log(ctx, slog.LevelError, "list sync failed", "list", list.ID, "error", result.Err)
		s.logAudit(ctx, audit.ActionListSyncFailed, map[string]string{
			"list":  list.ID,
			"error": result.Err.Error(),
		})
	}
	return result
}

func (s *Service) runSync(ctx context.Context, list ListConfig) Result {
	adapter, ok := s.adapters[list.Format]
	if !ok {
		return Result{ListID: list.ID, Status: StatusFailed, Err: fmt.Errorf("no adapter for format %q", list.Format)}
	}

	release, err := s.locker.TryLock(ctx, list.ID, lockTTL)
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			return Result{ListID: list.ID, Status: StatusFailed, Err: ErrSyncInProgress}
		}
		return Result{ListID: list.ID, Status: StatusFailed, Err: fmt.Errorf("acquire sync lock: %w", err)}
	}
	defer release()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	entities, err := adapter.Fetch(fetchCtx, list)
	if err != nil {
		return Result{ListID: list.ID, Status: StatusFailed, Err: &FetchError{ListID: list.ID, Err: err}}
	}

	now := requestcontext.Now(ctx).UTC()
	keep := make([]string, 0, len(entities))
	upserted := 0
	for _, e := range entities {
		e.Normalize()
		if err := e.Validate(); err != nil {
			s.log(ctx, slog.LevelWarn, "dropping invalid list entry",
				"list", list.ID, "external_id", e.ExternalID, "error", err)
			continue
		}
		e.SourceListID = list.ID
		e.LastSyncedAt = now
		if err := s.entities.Upsert(ctx, e); err != nil {
			return Result{ListID: list.ID, Status: StatusFailed, Err: fmt.Errorf("persist entity %s: %w", e.ExternalID, err)}
		}
		keep = append(keep, e.ExternalID)
		upserted++
	}

	// Delisting entities is only safe after a fully successful run; a
	// partial download must never look like a list shrinking.
	removed, err := s.entities.DeleteAbsent(ctx, list.ID, keep)
	if err != nil {
		return Result{ListID: list.ID, Status: StatusFailed, Err: fmt.Errorf("remove delisted entities: %w", err)}
	}

	s.metrics.AddRecordsIngested(list.ID, upserted)
	s.metrics.AddRecordsRemoved(list.ID, removed)
	return Result{ListID: list.ID, Status: StatusSucceeded, Records: upserted}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	s.logger.Log(ctx, level, msg, attributes...)
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, metadata map[string]string) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Publish(ctx, audit.NewEvent(action, metadata)); err != nil {
		s.log(ctx, slog.LevelWarn, "audit publish failed", "action", action, "error", err)
	}
}
