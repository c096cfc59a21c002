package tenantdb

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// FetchFunc produces a connection string for a tenant, typically by querying
// the master directory. It is invoked at most once per cold resolution round.
type FetchFunc func(ctx context.Context) (string, error)

// RegistryConfig is the environment-driven cache tuning for the Registry.
type RegistryConfig struct {
	// TTL is the sliding expiration window: each successful access within the
	// window extends it.
	TTL time.Duration `env:"TENANT_CACHE_TTL" envDefault:"24h"`
	// MaxEntries bounds the cache under very large tenant counts; least
	// recently used entries are evicted beyond the cap.
	MaxEntries int `env:"TENANT_CACHE_MAX_ENTRIES" envDefault:"1000"`
}

// Registry maps tenant ids to live connection strings. A directory lookup is
// a master database round trip, too expensive to repeat per request, so
// results are cached; concurrent cold resolutions for the same tenant are
// collapsed into a single fetch whose result (or failure) every waiter
// observes. Failures are never cached.
//
// The Registry is constructed once at process start and shared by reference;
// it is safe for unbounded concurrent use.
type Registry struct {
	log   *slog.Logger
	cache *connCache

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is one in-progress resolution round for a tenant. Waiters block on
// done and then share the result; the flight is discarded when the round
// completes, so a failed round never poisons later attempts.
type flight struct {
	done       chan struct{}
	connString string
	err        error
}

// NewRegistry creates a Registry with the given cache tuning.
func NewRegistry(cfg RegistryConfig, log *slog.Logger) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	return &Registry{
		log:     log,
		cache:   newConnCache(cfg.TTL, cfg.MaxEntries),
		flights: make(map[string]*flight),
	}
}

// Resolve returns the connection string for tenantID, fetching it at most
// once per cold round. A live cached entry is returned immediately. Otherwise
// the caller either starts a fetch or waits for the one already in progress;
// waiting is bounded by ctx, so a stuck fetch cannot starve later requests
// that carry their own deadlines.
func (r *Registry) Resolve(ctx context.Context, tenantID string, fetch FetchFunc) (string, error) {
	if strings.TrimSpace(tenantID) == "" {
		return "", ErrEmptyTenantID
	}

	if connString, ok := r.cache.get(tenantID); ok {
		r.log.DebugContext(ctx, "connection string retrieved from cache",
			slog.String("org_id", tenantID))
		return connString, nil
	}

	r.mu.Lock()
	// Re-check: another caller may have completed a round while this one was
	// between the cache miss and the lock.
	if connString, ok := r.cache.get(tenantID); ok {
		r.mu.Unlock()
		return connString, nil
	}
	if fl, ok := r.flights[tenantID]; ok {
		r.mu.Unlock()
		select {
		case <-fl.done:
			return fl.connString, fl.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	fl := &flight{done: make(chan struct{})}
	r.flights[tenantID] = fl
	r.mu.Unlock()

	r.log.InfoContext(ctx, "fetching connection string for tenant",
		slog.String("org_id", tenantID))

	connString, err := fetch(ctx)
	if err == nil && strings.TrimSpace(connString) == "" {
		err = ErrEmptyConnString
	}
	if err == nil {
		r.cache.set(tenantID, connString)
		r.log.InfoContext(ctx, "connection string cached for tenant",
			slog.String("org_id", tenantID))
	} else {
		connString = ""
		r.log.ErrorContext(ctx, "connection string fetch failed",
			slog.String("org_id", tenantID),
			slog.Any("error", err))
	}

	fl.connString, fl.err = connString, err

	r.mu.Lock()
	delete(r.flights, tenantID)
	r.mu.Unlock()
	close(fl.done)

	return connString, err
}

// Invalidate removes the cached entry for a tenant. It is idempotent and does
// not interrupt a resolution round already in flight. Used on logout and
// tenant deprovisioning.
func (r *Registry) Invalidate(tenantID string) {
	if _, removed := r.invalidate(tenantID); removed {
		r.log.Info("connection string removed from cache",
			slog.String("org_id", tenantID))
	}
}

// invalidate removes the entry and reports the removed connection string so
// the Executor can also drop pooled connections built from it.
func (r *Registry) invalidate(tenantID string) (string, bool) {
	if strings.TrimSpace(tenantID) == "" {
		return "", false
	}
	return r.cache.delete(tenantID)
}

// InvalidateAll clears the entire cache. Administrative use only — never part
// of normal request flow.
func (r *Registry) InvalidateAll() {
	r.cache.clear()
	r.log.Warn("all connection strings cleared from cache")
}

// Close stops the cache's background cleanup. Called at shutdown.
func (r *Registry) Close() {
	r.cache.close()
}
