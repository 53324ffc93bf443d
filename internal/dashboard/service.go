// Package dashboard assembles the aggregated snapshots behind each analytics
// page. It loads orders, folds them with the page's preset, and shields the
// database behind a short-lived Redis cache.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/sakanusa/gerai-analytics-backend/internal/aggregate"
	"github.com/sakanusa/gerai-analytics-backend/internal/export"
	"github.com/sakanusa/gerai-analytics-backend/internal/orders"
	"github.com/sakanusa/gerai-analytics-backend/pkg/config"
	pkgerrors "github.com/sakanusa/gerai-analytics-backend/pkg/errors"
	"github.com/sakanusa/gerai-analytics-backend/pkg/logger"
	"github.com/sakanusa/gerai-analytics-backend/pkg/metrics"
)

// Variant names the dashboard pages, each with its own aggregation preset.
type Variant string

const (
	VariantInvoice  Variant = "invoice"
	VariantSales    Variant = "sales"
	VariantOverview Variant = "overview"
)

// Variants lists every dashboard page.
var Variants = []Variant{VariantInvoice, VariantSales, VariantOverview}

// IsValid reports whether the value names a known dashboard page.
func (v Variant) IsValid() bool {
	for _, candidate := range Variants {
		if candidate == v {
			return true
		}
	}
	return false
}

func (v Variant) options() aggregate.Options {
	switch v {
	case VariantSales:
		return aggregate.SalesOptions()
	case VariantOverview:
		return aggregate.OverviewOptions()
	default:
		return aggregate.InvoiceOptions()
	}
}

// Query carries the inputs for one snapshot read. Reference anchors the
// headline month; zero means the current month.
type Query struct {
	Filters   orders.Filters
	Reference time.Time
}

// Service exposes snapshot and export reads for the dashboard pages.
type Service interface {
	Snapshot(ctx context.Context, variant Variant, query Query) (*aggregate.Snapshot, error)
	Export(ctx context.Context, variant Variant, kind export.TableKind, query Query) (*export.Table, error)
}

type aggregationReader interface {
	ListForAggregation(ctx context.Context, filters orders.Filters) ([]aggregate.Order, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SnapshotKey(parts ...string) string
}

type snapshotArchiver interface {
	Archive(ctx context.Context, variant string, snapshot *aggregate.Snapshot, generatedAt time.Time) error
}

type service struct {
	repo     aggregationReader
	cache    snapshotCache
	archiver snapshotArchiver
	metrics  *metrics.DashboardMetrics
	logg     *logger.Logger
	cfg      config.CacheConfig
	clock    func() time.Time
}

// NewService builds the dashboard service. The archiver is optional; a nil
// archiver disables snapshot archival.
func NewService(repo aggregationReader, cache snapshotCache, archiver snapshotArchiver, m *metrics.DashboardMetrics, logg *logger.Logger, cfg config.CacheConfig) Service {
	return &service{
		repo:     repo,
		cache:    cache,
		archiver: archiver,
		metrics:  m,
		logg:     logg,
		cfg:      cfg,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Snapshot(ctx context.Context, variant Variant, query Query) (*aggregate.Snapshot, error) {
	if !variant.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown dashboard variant")
	}

	var key string
	if s.cache != nil {
		key = s.cacheKey(variant, query)
		if cached := s.fromCache(ctx, variant, key); cached != nil {
			return cached, nil
		}
	}

	records, err := s.repo.ListForAggregation(ctx, query.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading orders for aggregation")
	}

	started := s.clock()
	opts := variant.options()
	opts.Now = s.anchor(query, started)
	if !query.Reference.IsZero() {
		opts.ReferenceMonth = aggregate.MonthKeyFor(query.Reference)
	}
	snapshot := aggregate.Aggregate(records, opts)

	s.metrics.ObserveDuration(string(variant), s.clock().Sub(started))
	s.metrics.AddOrdersScanned(string(variant), len(records))

	s.store(ctx, variant, key, snapshot)

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, string(variant), snapshot, started); err != nil {
			s.logg.Warn(s.logg.WithVariant(ctx, string(variant)), "snapshot archive failed: "+err.Error())
		}
	}

	return snapshot, nil
}

func (s *service) Export(ctx context.Context, variant Variant, kind export.TableKind, query Query) (*export.Table, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown export table")
	}

	snapshot, err := s.Snapshot(ctx, variant, query)
	if err != nil {
		return nil, err
	}

	table := export.Flatten(snapshot, kind)
	return &table, nil
}

func (s *service) fromCache(ctx context.Context, variant Variant, key string) *aggregate.Snapshot {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, key)
	if err != nil || payload == "" {
		s.metrics.IncCacheMiss(string(variant))
		return nil
	}

	var snapshot aggregate.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		s.metrics.IncCacheMiss(string(variant))
		return nil
	}
	s.metrics.IncCacheHit(string(variant))
	return &snapshot
}

func (s *service) store(ctx context.Context, variant Variant, key string, snapshot *aggregate.Snapshot) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl()); err != nil {
		s.logg.Warn(s.logg.WithVariant(ctx, string(variant)), "snapshot cache write failed: "+err.Error())
	}
}

// anchor picks the time the aggregation treats as "now". A historical
// reference month is anchored at its last instant so due-date aging reads
// as of that month's close.
func (s *service) anchor(query Query, started time.Time) time.Time {
	if query.Reference.IsZero() {
		return started
	}
	monthStart := time.Date(query.Reference.Year(), query.Reference.Month(), 1, 0, 0, 0, 0, time.UTC)
	return monthStart.AddDate(0, 1, 0).Add(-time.Second)
}

// cacheKey folds the current time bucket into the key so replicas converge on
// the same entry and stale snapshots age out even without eviction.
func (s *service) cacheKey(variant Variant, query Query) string {
	bucket := s.cfg.Bucket
	if bucket <= 0 {
		bucket = 5 * time.Minute
	}
	slot := s.clock().Truncate(bucket).Unix()
	return s.cache.SnapshotKey(string(variant), strconv.FormatInt(slot, 10), queryDigest(query))
}

func (s *service) ttl() time.Duration {
	if s.cfg.SnapshotTTL > 0 {
		return s.cfg.SnapshotTTL
	}
	return 5 * time.Minute
}

func queryDigest(query Query) string {
	payload, err := json.Marshal(query)
	if err != nil {
		return "0"
	}
	h := fnv.New64a()
	_, _ = h.Write(payload)
	return fmt.Sprintf("%x", h.Sum64())
}
