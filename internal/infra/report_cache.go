package infra

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/nazim1903/Businesstracker/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	reportGenerationKey = "report:dashboard:gen"
	reportKeyPrefix     = "report:dashboard:"
)

// ReportCache stores the dashboard report in Redis under a generation number.
// Invalidate bumps the generation, so a report computed from a snapshot taken
// before a write can never be served after that write's invalidation.
// Calls go through a circuit breaker; while it is open every lookup misses.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
	cb  *CircuitBreaker
}

func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: ttl, cb: NewCircuitBreaker(DefaultCBConfig())}
}

func isMiss(err error) bool { return errors.Is(err, redis.Nil) }

// Generation returns the current cache generation (0 when unset).
func (c *ReportCache) Generation(ctx context.Context) (int64, error) {
	var gen int64
	err := c.cb.Execute(func() error {
		var err error
		gen, err = c.rdb.Get(ctx, reportGenerationKey).Int64()
		return err
	}, isMiss)
	if isMiss(err) {
		return 0, nil
	}
	return gen, err
}

// Get returns the report cached for generation gen, if any.
func (c *ReportCache) Get(ctx context.Context, gen int64) (*dto.DashboardReport, bool) {
	var b []byte
	err := c.cb.Execute(func() error {
		var err error
		b, err = c.rdb.Get(ctx, c.key(gen)).Bytes()
		return err
	}, isMiss)
	if err != nil {
		return nil, false
	}
	var r dto.DashboardReport
	if err := json.Unmarshal(b, &r); err != nil {
		log.Warn().Err(err).Int64("generation", gen).Msg("discarding unreadable cached report")
		return nil, false
	}
	return &r, true
}

// Set caches r under generation gen. Errors are logged and ignored.
func (c *ReportCache) Set(ctx context.Context, gen int64, r *dto.DashboardReport) {
	b, err := json.Marshal(r)
	if err != nil {
		return
	}
	err = c.cb.Execute(func() error {
		return c.rdb.Set(ctx, c.key(gen), b, c.ttl).Err()
	})
	if err != nil && !errors.Is(err, ErrCircuitOpen) {
		log.Warn().Err(err).Msg("report cache set failed")
	}
}

// Invalidate moves the cache to a new generation. It bypasses the breaker: a
// skipped invalidation could leave a stale report readable once it closes.
func (c *ReportCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, reportGenerationKey).Err(); err != nil {
		log.Warn().Err(err).Msg("report cache invalidation failed")
	}
}

// State exposes the breaker state for the health endpoint.
func (c *ReportCache) State() CBState { return c.cb.State() }

func (c *ReportCache) key(gen int64) string {
	return reportKeyPrefix + strconv.FormatInt(gen, 10)
}
