package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fixora/assetdash/internal/analytics"
	"github.com/fixora/assetdash/internal/domain"
	"github.com/fixora/assetdash/internal/logger"
	"github.com/fixora/assetdash/internal/observability"
	"github.com/fixora/assetdash/internal/ports"
)

// Record field names used in store predicates
const (
	FieldID         = "$id"
	FieldDepartment = "department"
	FieldCategory   = "category"
	FieldStatus     = "availableStatus"
	FieldCreatedAt  = "$createdAt"
	FieldEventAt    = "at"
	FieldReportedAt = "reportedAt"
)

// ResultCache stores computed analytics keyed by canonical query
type ResultCache interface {
	Get(key string) (interface{}, bool)
	Put(key string, value interface{})
}

// AnalyticsSettings tunes record fetching
type AnalyticsSettings struct {
	PerformanceLookback time.Duration
	TrendLookback       time.Duration
	AssetFetchLimit     int
	EventFetchLimit     int
}

// DefaultAnalyticsSettings returns the stock lookbacks and fetch limits
func DefaultAnalyticsSettings() AnalyticsSettings {
	return AnalyticsSettings{
		PerformanceLookback: 180 * 24 * time.Hour,
		TrendLookback:       365 * 24 * time.Hour,
		AssetFetchLimit:     10000,
		EventFetchLimit:     5000,
	}
}

// AnalyticsBundle is the composite result of every requested calculator
type AnalyticsBundle struct {
	Utilization *analytics.UtilizationResult `json:"utilization,omitempty"`
	Cost        *analytics.CostResult        `json:"cost,omitempty"`
	Performance *analytics.PerformanceResult `json:"performance,omitempty"`
	Predictive  *analytics.PredictiveResult  `json:"predictive,omitempty"`
	Trend       *analytics.TrendResult       `json:"trend,omitempty"`
	GeneratedAt time.Time                    `json:"generatedAt"`
}

// AnalyticsResponse is a computed or cached analytics result
type AnalyticsResponse struct {
	Data   interface{}
	Cached bool
}

// AnalyticsUseCase answers validated analytics queries
type AnalyticsUseCase struct {
	store    ports.RecordStore
	cache    ResultCache
	logger   logger.Logger
	metrics  *observability.Metrics
	settings AnalyticsSettings
	now      func() time.Time
}

// AnalyticsOption configures an AnalyticsUseCase
type AnalyticsOption func(*AnalyticsUseCase)

// WithClock overrides the evaluation time source
func WithClock(now func() time.Time) AnalyticsOption {
	return func(uc *AnalyticsUseCase) {
		uc.now = now
	}
}

// WithMetrics records fetch and calculator timings
func WithMetrics(m *observability.Metrics) AnalyticsOption {
	return func(uc *AnalyticsUseCase) {
		uc.metrics = m
	}
}

// NewAnalyticsUseCase creates a new analytics use case
func NewAnalyticsUseCase(
	store ports.RecordStore,
	cache ResultCache,
	log logger.Logger,
	settings AnalyticsSettings,
	opts ...AnalyticsOption,
) *AnalyticsUseCase {
	uc := &AnalyticsUseCase{
		store:    store,
		cache:    cache,
		logger:   log,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// records holds everything fetched for one query
type records struct {
	assets []*domain.Asset
	events []*domain.AssetEvent
	issues []*domain.AssetIssue
}

type recordNeeds struct {
	assets bool
	events bool
	issues bool
}

func (n *recordNeeds) add(t domain.AnalyticsType) {
	switch t {
	case domain.AnalyticsTypeUtilization:
		n.assets, n.events = true, true
	case domain.AnalyticsTypeCost:
		n.assets = true
	case domain.AnalyticsTypePerformance:
		n.events, n.issues = true, true
	case domain.AnalyticsTypePredictive:
		n.assets, n.events, n.issues = true, true, true
	case domain.AnalyticsTypeTrend:
		n.events = true
	}
}

// Execute returns the analytics for q, from the cache when a fresh entry exists
func (uc *AnalyticsUseCase) Execute(ctx context.Context, q *domain.AnalyticsQuery) (*AnalyticsResponse, error) {
	key := q.CanonicalKey()
	if cached, ok := uc.cache.Get(key); ok {
		uc.logger.Debug(ctx, "Analytics served from cache", map[string]interface{}{
			"type": q.Type,
			"key":  key,
		})
		return &AnalyticsResponse{Data: cached, Cached: true}, nil
	}

	start := time.Now()
	data, err := uc.compute(ctx, q)
	if err != nil {
		uc.logger.Error(ctx, "Analytics computation failed", err, map[string]interface{}{
			"type": q.Type,
		})
		return nil, err
	}
	uc.cache.Put(key, data)

	logger.LogPerformance(ctx, uc.logger, "analytics.compute", time.Since(start), map[string]interface{}{
		"type":     q.Type,
		"group_by": q.GroupBy,
	})
	return &AnalyticsResponse{Data: data}, nil
}

func (uc *AnalyticsUseCase) compute(ctx context.Context, q *domain.AnalyticsQuery) (interface{}, error) {
	now := uc.now()
	scoped := *q
	if q.Type == domain.AnalyticsTypePerformance {
		scoped.DateRange = q.DateRange.OrLookback(now, uc.settings.PerformanceLookback)
	} else {
		scoped.DateRange = q.DateRange.OrLookback(now, uc.settings.TrendLookback)
	}

	sections := uc.sections(&scoped)
	var needs recordNeeds
	for _, t := range sections {
		needs.add(t)
	}
	if scoped.Department != "" || scoped.Category != "" {
		// events and issues carry no department or category, so scope them by asset
		needs.assets = needs.assets || needs.events || needs.issues
	}

	recs, err := uc.fetch(ctx, &scoped, needs)
	if err != nil {
		return nil, err
	}

	if scoped.Type != domain.AnalyticsTypeNone {
		return uc.run(scoped.Type, recs, &scoped, now)
	}

	bundle := &AnalyticsBundle{GeneratedAt: now}
	g, _ := errgroup.WithContext(ctx)
	for _, t := range sections {
		t := t
		g.Go(func() error {
			result, err := uc.run(t, recs, &scoped, now)
			if err != nil {
				return err
			}
			switch t {
			case domain.AnalyticsTypeUtilization:
				bundle.Utilization = result.(*analytics.UtilizationResult)
			case domain.AnalyticsTypeCost:
				bundle.Cost = result.(*analytics.CostResult)
			case domain.AnalyticsTypePerformance:
				bundle.Performance = result.(*analytics.PerformanceResult)
			case domain.AnalyticsTypePredictive:
				bundle.Predictive = result.(*analytics.PredictiveResult)
			case domain.AnalyticsTypeTrend:
				bundle.Trend = result.(*analytics.TrendResult)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// sections lists the calculators a query needs. The composite honours the
// query's metric list and ignores unknown names.
func (uc *AnalyticsUseCase) sections(q *domain.AnalyticsQuery) []domain.AnalyticsType {
	if q.Type != domain.AnalyticsTypeNone {
		return []domain.AnalyticsType{q.Type}
	}
	var out []domain.AnalyticsType
	for _, t := range domain.CalculatorTypes {
		if q.WantsSection(t) {
			out = append(out, t)
		}
	}
	return out
}

func (uc *AnalyticsUseCase) run(t domain.AnalyticsType, recs *records, q *domain.AnalyticsQuery, now time.Time) (interface{}, error) {
	defer uc.metrics.ObserveCalculator(string(t), time.Now())

	switch t {
	case domain.AnalyticsTypeUtilization:
		return analytics.CalculateUtilization(recs.assets, recs.events, q, now)
	case domain.AnalyticsTypeCost:
		return analytics.CalculateCost(recs.assets, now)
	case domain.AnalyticsTypePerformance:
		return analytics.CalculatePerformance(recs.issues, recs.events)
	case domain.AnalyticsTypePredictive:
		return analytics.CalculatePredictive(recs.assets, recs.events, recs.issues, q, now)
	case domain.AnalyticsTypeTrend:
		return analytics.CalculateTrend(recs.events, q)
	}
	return nil, &domain.ComputationError{Calculator: string(t), Reason: "unknown analytics type"}
}

// fetch loads the needed record kinds concurrently
func (uc *AnalyticsUseCase) fetch(ctx context.Context, q *domain.AnalyticsQuery, needs recordNeeds) (*records, error) {
	recs := &records{}
	g, gctx := errgroup.WithContext(ctx)

	if needs.assets {
		g.Go(func() error {
			var preds []ports.Predicate
			if q.Department != "" {
				preds = append(preds, ports.Eq(FieldDepartment, q.Department))
			}
			if q.Category != "" {
				preds = append(preds, ports.Eq(FieldCategory, q.Category))
			}
			preds = append(preds, ports.OrderAsc(FieldID), ports.Limit(uc.settings.AssetFetchLimit))

			assets, err := timedFetch(gctx, uc, ports.RecordKindAssets, func(ctx context.Context) ([]*domain.Asset, error) {
				return ports.ListAssets(ctx, uc.store, preds...)
			})
			recs.assets = assets
			return err
		})
	}

	if needs.events {
		g.Go(func() error {
			preds := append(ports.Between(FieldEventAt, q.DateRange.Start, q.DateRange.End),
				ports.OrderDesc(FieldEventAt), ports.Limit(uc.settings.EventFetchLimit))

			events, err := timedFetch(gctx, uc, ports.RecordKindAssetEvents, func(ctx context.Context) ([]*domain.AssetEvent, error) {
				return ports.ListEvents(ctx, uc.store, preds...)
			})
			uc.warnIfTruncated(gctx, ports.RecordKindAssetEvents, len(events), q)
			recs.events = events
			return err
		})
	}

	if needs.issues {
		g.Go(func() error {
			preds := append(ports.Between(FieldReportedAt, q.DateRange.Start, q.DateRange.End),
				ports.OrderDesc(FieldReportedAt), ports.Limit(uc.settings.EventFetchLimit))

			issues, err := timedFetch(gctx, uc, ports.RecordKindAssetIssues, func(ctx context.Context) ([]*domain.AssetIssue, error) {
				return ports.ListIssues(ctx, uc.store, preds...)
			})
			uc.warnIfTruncated(gctx, ports.RecordKindAssetIssues, len(issues), q)
			recs.issues = issues
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if q.Department != "" || q.Category != "" {
		ids := make(map[string]struct{}, len(recs.assets))
		for _, a := range recs.assets {
			ids[a.ID] = struct{}{}
		}
		recs.events = scopeEvents(recs.events, ids)
		recs.issues = scopeIssues(recs.issues, ids)
	}
	return recs, nil
}

// warnIfTruncated logs when a fetch filled its limit. Events and issues are
// fetched newest first, so only the oldest records of the range are missing.
func (uc *AnalyticsUseCase) warnIfTruncated(ctx context.Context, kind ports.RecordKind, n int, q *domain.AnalyticsQuery) {
	if n < uc.settings.EventFetchLimit {
		return
	}
	uc.logger.Warn(ctx, "Record fetch reached its limit, oldest records in range were skipped", map[string]interface{}{
		"kind":  kind,
		"limit": uc.settings.EventFetchLimit,
		"start": q.DateRange.Start,
		"end":   q.DateRange.End,
	})
}

func timedFetch[T any](ctx context.Context, uc *AnalyticsUseCase, kind ports.RecordKind, list func(context.Context) ([]T, error)) ([]T, error) {
	start := time.Now()
	out, err := list(ctx)
	if uc.metrics != nil {
		uc.metrics.RecordFetchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
		if err != nil {
			uc.metrics.RecordFetchErrorsTotal.WithLabelValues(string(kind)).Inc()
		}
	}
	if err != nil {
		return nil, err
	}
	uc.logger.Debug(ctx, "Records fetched", map[string]interface{}{
		"kind":        kind,
		"count":       len(out),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return out, nil
}

func scopeEvents(events []*domain.AssetEvent, ids map[string]struct{}) []*domain.AssetEvent {
	out := events[:0:0]
	for _, e := range events {
		if _, ok := ids[e.AssetID]; ok {
			out = append(out, e)
		}
	}
	return out
}

func scopeIssues(issues []*domain.AssetIssue, ids map[string]struct{}) []*domain.AssetIssue {
	out := issues[:0:0]
	for _, i := range issues {
		if _, ok := ids[i.AssetID]; ok {
			out = append(out, i)
		}
	}
	return out
}
