package screening

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"vigil/internal/audit"
	"vigil/internal/sanctions"
	"vigil/internal/screening/metrics"
	"vigil/internal/screening/score"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/requestcontext"
)

// EntityReader is the slice of the entity store the engine needs: the full
// alias index for the scan phase, and entity hydration for the scoring phase.
type EntityReader interface {
	Aliases(ctx context.Context) ([]sanctions.AliasRef, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*sanctions.SanctionedEntity, error)
}

// AuditPublisher records that a screening took place. Failures are logged
// and swallowed; auditing never fails a check.
type AuditPublisher interface {
	Publish(ctx context.Context, event audit.Event) error
}

// Service is the screening engine: scans every persisted alias against the
// query, prunes on the name floor, then scores survivors on date of birth and
// country.
type Service struct {
	entities       EntityReader
	config         Config
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

// New constructs a Service.
func New(entities EntityReader, config Config, opts ...Option) *Service {
	s := &Service{
		entities: entities,
		config:   config,
		tracer:   otel.Tracer("vigil/screening"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen runs a query against the full entity store and returns every
// candidate that survives the name floor, scored and classified, ordered best
// first. The name floor is the only drop mechanism; a weak composite comes
// back classified CLEAR rather than vanishing. The slice is never nil so the
// API always renders a JSON array.
func (s *Service) Screen(ctx context.Context, query Query) ([]ScoredMatch, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "screening.Screen")
	defer span.End()

	if strings.TrimSpace(query.Name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "query name is required")
	}

	refs, err := s.entities.Aliases(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to scan aliases")
	}

	// Phase one: best name score per entity across all of its aliases.
	// Entities whose best alias stays under the floor never reach scoring.
	type candidate struct {
		nameScore int
		alias     string
	}
	candidates := make(map[uuid.UUID]candidate)
	for _, ref := range refs {
		nameScore := s.aliasNameScore(query.Name, ref.WholeName)
		if nameScore < s.config.Thresholds.NameFloor {
			continue
		}
		if best, ok := candidates[ref.EntityID]; !ok || nameScore > best.nameScore {
			candidates[ref.EntityID] = candidate{nameScore: nameScore, alias: ref.WholeName}
		}
	}
	span.SetAttributes(attribute.Int("screening.candidates", len(candidates)))
	s.metrics.ObserveCandidates(len(candidates))

	matches := make([]ScoredMatch, 0, len(candidates))
	if len(candidates) > 0 {
		ids := make([]uuid.UUID, 0, len(candidates))
		for id := range candidates {
			ids = append(ids, id)
		}

		entities, err := s.entities.FindByIDs(ctx, ids)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate entities")
		}

		for _, entity := range entities {
			c := candidates[entity.ID]
			matches = append(matches, s.scoreEntity(query, entity, c.nameScore, c.alias))
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Composite != matches[j].Composite {
			return matches[i].Composite > matches[j].Composite
		}
		return matches[i].EntityID < matches[j].EntityID
	})

	outcome := string(ClassificationClear)
	if len(matches) > 0 {
		outcome = string(matches[0].Classification)
	}
	s.metrics.IncrementOutcome(outcome)
	s.metrics.ObserveScreenLatency(time.Since(started))
	s.logAudit(ctx, audit.ActionScreeningPerformed, map[string]string{
		"outcome": outcome,
		"matches": strconv.Itoa(len(matches)),
	})

	return matches, nil
}

// aliasNameScore compares the query name against one alias. Beyond the plain
// whole-string score it tries a token alignment: each query token takes its
// best score against the alias tokens and the results are averaged. That way
// "Vladimir Putin" still lines up with the fuller "Vladimir Vladimirovich
// PUTIN" even though the whole strings diverge.
func (s *Service) aliasNameScore(queryName, aliasName string) int {
	whole := score.Name(queryName, aliasName)

	queryTokens := strings.Fields(score.Normalize(queryName))
	aliasTokens := strings.Fields(score.Normalize(aliasName))
	if len(queryTokens) < 2 && len(aliasTokens) < 2 {
		return whole
	}
	if len(queryTokens) == 0 || len(aliasTokens) == 0 {
		return whole
	}

	total := 0
	for _, qt := range queryTokens {
		best := 0
		for _, at := range aliasTokens {
			if sc := score.Name(qt, at); sc > best {
				best = sc
			}
		}
		total += best
	}
	aligned := int(math.Round(float64(total) / float64(len(queryTokens))))

	if aligned > whole {
		return aligned
	}
	return whole
}

func (s *Service) scoreEntity(query Query, entity *sanctions.SanctionedEntity, nameScore int, matchedAlias string) ScoredMatch {
	dateScore := 0
	if query.DateOfBirth != "" {
		for _, b := range entity.BirthRecords {
			if sc := score.Date(query.DateOfBirth, b.Date); sc > dateScore {
				dateScore = sc
			}
		}
	}

	countryScore := 0
	if query.CountryCode != "" {
		for _, cc := range entity.CountryCodes {
			if sc := score.Country(query.CountryCode, cc); sc > countryScore {
				countryScore = sc
			}
		}
		for _, b := range entity.BirthRecords {
			if sc := score.Country(query.CountryCode, b.CountryCode); sc > countryScore {
				countryScore = sc
			}
		}
	}

	composite := s.composite(query, nameScore, dateScore, countryScore)

	return ScoredMatch{
		EntityID:       entity.ID.String(),
		SourceListID:   entity.SourceListID,
		MatchedAlias:   matchedAlias,
		NameScore:      nameScore,
		DateScore:      dateScore,
		CountryScore:   countryScore,
		Composite:      composite,
		Classification: s.classify(composite),
	}
}

// composite blends the field scores. Weights of fields the query did not
// provide are redistributed proportionally over the fields it did, so a
// name-only query can still reach 100.
func (s *Service) composite(query Query, nameScore, dateScore, countryScore int) int {
	w := s.config.Weights

	sum := w.Name * float64(nameScore)
	activeWeight := w.Name
	if query.DateOfBirth != "" {
		sum += w.Date * float64(dateScore)
		activeWeight += w.Date
	}
	if query.CountryCode != "" {
		sum += w.Country * float64(countryScore)
		activeWeight += w.Country
	}
	if activeWeight == 0 {
		return 0
	}
	return int(math.Round(sum / activeWeight))
}

func (s *Service) classify(composite int) Classification {
	switch {
	case composite >= s.config.Thresholds.Hit:
		return ClassificationHit
	case composite >= s.config.Thresholds.Review:
		return ClassificationReview
	default:
		return ClassificationClear
	}
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, metadata map[string]string) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		metadata["request_id"] = requestID
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action), "log_type", "audit", "metadata", metadata)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Publish(ctx, audit.NewEvent(action, metadata)); err != nil && s.logger != nil {
		s.logger.Warn("audit publish failed", "action", action, "error", err)
	}
}
