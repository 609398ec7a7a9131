package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	casemodels "sutura/internal/cases/models"
	"sutura/internal/scope"
	"sutura/pkg/domain"
	dErrors "sutura/pkg/domain-errors"
	"sutura/pkg/requestcontext"
)

// Dimensions accepted by Breakdown.
const (
	DimensionViolenceType  = "violence_type"
	DimensionAgeBucket     = "age_bucket"
	DimensionRegion        = "region"
	DimensionRelationship  = "relationship"
	DimensionMaritalStatus = "marital_status"
	DimensionDisability    = "disability"
)

var dimensionExtractors = map[string]func(*casemodels.Case) string{
	DimensionViolenceType:  func(c *casemodels.Case) string { return orUnknown(c.ViolenceType) },
	DimensionAgeBucket:     func(c *casemodels.Case) string { return ageBucket(c.VictimAge) },
	DimensionRegion:        func(c *casemodels.Case) string { return orUnknown(c.VictimRegion) },
	DimensionRelationship:  func(c *casemodels.Case) string { return orUnknown(c.RelationshipToVictim) },
	DimensionMaritalStatus: func(c *casemodels.Case) string { return orUnknown(c.MaritalStatus) },
	DimensionDisability: func(c *casemodels.Case) string {
		if c.HasDisability {
			return "yes"
		}
		return "no"
	},
}

// CaseLister supplies the raw case set; the service scopes it per actor.
type CaseLister interface {
	List(ctx context.Context) ([]*casemodels.Case, error)
}

// Cache stores rendered report payloads. Implementations must treat a
// miss and a failure identically from the caller's perspective: the
// service degrades to recomputation either way.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service computes scoped reports with optional snapshot caching.
type Service struct {
	cases    CaseLister
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCache enables per-scope snapshot caching of summary payloads.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// New constructs a Service.
func New(cases CaseLister, opts ...Option) *Service {
	s := &Service{cases: cases}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary computes the overview report over the actor's scoped cases. The
// breakdowns are independent, so they run concurrently.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	if cached, ok := s.cachedSummary(ctx, actor); ok {
		return cached, nil
	}

	scoped, err := s.scopedCases(ctx, actor)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalCases:     len(scoped),
		ByStatus:       statusCounts(scoped),
		ResolutionRate: resolutionRate(scoped),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { summary.ViolenceTypes = breakdown(DimensionViolenceType, scoped); return nil })
	g.Go(func() error { summary.AgeBuckets = breakdown(DimensionAgeBucket, scoped); return nil })
	g.Go(func() error { summary.Regions = breakdown(DimensionRegion, scoped); return nil })
	g.Go(func() error { summary.Relationships = breakdown(DimensionRelationship, scoped); return nil })
	g.Go(func() error { summary.MaritalStatus = breakdown(DimensionMaritalStatus, scoped); return nil })
	g.Go(func() error { summary.Disability = breakdown(DimensionDisability, scoped); return nil })
	g.Go(func() error { summary.Trend = trend(scoped); return nil })
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute summary")
	}

	s.storeSummary(ctx, actor, summary)
	return summary, nil
}

// Breakdown computes a single-dimension distribution.
func (s *Service) Breakdown(ctx context.Context, dimension string) (*Breakdown, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}
	if _, ok := dimensionExtractors[dimension]; !ok {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown dimension %q", dimension)
	}

	scoped, err := s.scopedCases(ctx, actor)
	if err != nil {
		return nil, err
	}
	return breakdown(dimension, scoped), nil
}

// Trend returns monthly submission counts, oldest month first.
func (s *Service) Trend(ctx context.Context) ([]TrendPoint, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "authentication required")
	}

	scoped, err := s.scopedCases(ctx, actor)
	if err != nil {
		return nil, err
	}
	return trend(scoped), nil
}

func (s *Service) scopedCases(ctx context.Context, actor domain.Actor) ([]*casemodels.Case, error) {
	all, err := s.cases.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cases")
	}
	return scope.VisibleCases(actor, all), nil
}

// cacheKey isolates cache entries by effective scope, not by actor ID:
// two admins of the same region share an entry, a super-admin shares the
// global one.
func cacheKey(actor domain.Actor) string {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return "reports:summary:global"
	case domain.RoleAdmin:
		return "reports:summary:region:" + actor.Region
	default:
		return "reports:summary:agent:" + actor.ID.String()
	}
}

func (s *Service) cachedSummary(ctx context.Context, actor domain.Actor) (*Summary, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(actor))
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		if s.logger != nil {
			s.logger.Warn("discarding malformed cached summary", "error", err)
		}
		return nil, false
	}
	return &summary, true
}

func (s *Service) storeSummary(ctx context.Context, actor domain.Actor, summary *Summary) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(actor), raw, s.cacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("failed to cache summary", "error", err)
	}
}

func statusCounts(cases []*casemodels.Case) map[string]int {
	out := make(map[string]int)
	for _, c := range cases {
		out[string(c.Status)]++
	}
	return out
}

// resolutionRate is completed over total. Archived cases count toward the
// denominator but are not resolved; archiving closes a file, it does not
// resolve it.
func resolutionRate(cases []*casemodels.Case) float64 {
	if len(cases) == 0 {
		return 0
	}
	completed := 0
	for _, c := range cases {
		if c.Status == domain.CaseStatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(cases))
}

func breakdown(dimension string, cases []*casemodels.Case) *Breakdown {
	extract := dimensionExtractors[dimension]
	counts := make(map[string]int)
	for _, c := range cases {
		counts[extract(c)]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for label, count := range counts {
		buckets = append(buckets, Bucket{Label: label, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Label < buckets[j].Label
	})

	return &Breakdown{Dimension: dimension, Total: len(cases), Buckets: buckets}
}

func trend(cases []*casemodels.Case) []TrendPoint {
	counts := make(map[string]int)
	for _, c := range cases {
		counts[c.SubmittedAt.Format("2006-01")]++
	}
	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		out = append(out, TrendPoint{Month: m, Count: counts[m]})
	}
	return out
}

var ageBounds = []struct {
	max   int
	label string
}{
	{14, "0-14"},
	{24, "15-24"},
	{34, "25-34"},
	{44, "35-44"},
	{54, "45-54"},
}

func ageBucket(age int) string {
	for _, b := range ageBounds {
		if age <= b.max {
			return b.label
		}
	}
	return "55+"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
