// internal/projection/cache.go
//
// In-memory cache of site projections keyed by site slug.
//
// Context
// -------
// Public pages are rendered from the projection the builder API returns for
// a slug.  Fetching on every request would tie page latency to the API, so
// the cache loads lazily, collapses concurrent misses with singleflight,
// and keeps entries until they go stale (TTL), sit unused (IdleTTL), or
// lose an LRU contest (MaxEntries).
//
// Staleness
// ---------
// A stale entry is refetched on the next Get.  When that refetch fails for
// any reason other than "not found", the stale projection keeps serving and
// the failure is logged.  A 404 drops the entry.
//
// Notes
// -----
//   - Projections are never mutated in place.  ApplySection swaps in a
//     copy, so a render pass holding the old pointer stays consistent.
//   - Oxford commas, two spaces after periods.
package projection

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/sitebuilder/internal/api"
	"github.com/yanizio/sitebuilder/internal/metrics"
	"github.com/yanizio/sitebuilder/internal/site"
)

// Defaults, overridable through Options.
const (
	DefaultTTL           = time.Minute
	DefaultIdleTTL       = 30 * time.Minute
	DefaultMaxEntries    = 100
	DefaultEvictInterval = 5 * time.Minute
)

// Fetcher loads a projection by slug.  *api.Client satisfies it.
type Fetcher interface {
	FetchSite(ctx context.Context, slug string) (*site.Projection, error)
}

// Options tunes a Cache.  Zero values use the defaults above.
type Options struct {
	TTL           time.Duration
	IdleTTL       time.Duration
	MaxEntries    int
	EvictInterval time.Duration
	Logger        *zap.Logger

	now func() time.Time
}

type entry struct {
	proj     atomic.Pointer[site.Projection]
	loadedAt atomic.Int64 // UnixNano
	lastSeen atomic.Int64 // UnixNano
}

// Cache is safe for concurrent use.  Call Close to stop the evictor.
type Cache struct {
	fetch Fetcher
	opts  Options
	log   *zap.Logger

	sfg  singleflight.Group
	m    sync.Map // slug → *entry
	size atomic.Int64

	evictTicker *time.Ticker
	stop        chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
}

// New constructs a Cache and starts the background evictor.
func New(f Fetcher, opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.EvictInterval <= 0 {
		opts.EvictInterval = DefaultEvictInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	c := &Cache{
		fetch: f,
		opts:  opts,
		log:   opts.Logger,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	c.evictTicker = time.NewTicker(opts.EvictInterval)
	go c.evictLoop()
	return c
}

// Close stops the evictor.  Cached entries stay readable.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
}

// Len reports cached projections.
func (c *Cache) Len() int { return int(c.size.Load()) }

// Get returns the projection for slug, loading it on demand.
func (c *Cache) Get(ctx context.Context, slug string) (*site.Projection, error) {
	now := c.opts.now().UnixNano()
	if v, ok := c.m.Load(slug); ok {
		ent := v.(*entry)
		ent.lastSeen.Store(now)
		if time.Duration(now-ent.loadedAt.Load()) < c.opts.TTL {
			return ent.proj.Load(), nil
		}
	}

	v, err, _ := c.sfg.Do(slug, func() (any, error) {
		// Double-check after singleflight barrier.
		now := c.opts.now().UnixNano()
		if v, ok := c.m.Load(slug); ok {
			ent := v.(*entry)
			if time.Duration(now-ent.loadedAt.Load()) < c.opts.TTL {
				return ent.proj.Load(), nil
			}
		}
		return c.load(context.WithoutCancel(ctx), slug)
	})
	if err != nil {
		return nil, err
	}
	return v.(*site.Projection), nil
}

func (c *Cache) load(ctx context.Context, slug string) (*site.Projection, error) {
	p, err := c.fetch.FetchSite(ctx, slug)
	now := c.opts.now().UnixNano()
	if err != nil {
		metrics.ProjectionLoadErrorsTotal.Inc()
		v, ok := c.m.Load(slug)
		if api.NotFound(err) {
			if ok {
				c.drop(slug, "removed upstream")
			}
			return nil, err
		}
		if ok {
			ent := v.(*entry)
			c.log.Warn("projection refresh failed, serving stale copy",
				zap.String("site", slug), zap.Error(err))
			return ent.proj.Load(), nil
		}
		return nil, err
	}

	metrics.ProjectionLoadTotal.Inc()
	if v, ok := c.m.Load(slug); ok {
		ent := v.(*entry)
		ent.proj.Store(p)
		ent.loadedAt.Store(now)
		ent.lastSeen.Store(now)
		return p, nil
	}
	ent := &entry{}
	ent.proj.Store(p)
	ent.loadedAt.Store(now)
	ent.lastSeen.Store(now)
	if _, loaded := c.m.LoadOrStore(slug, ent); !loaded {
		c.size.Add(1)
		metrics.ProjectionsCached.Inc()
	}
	return p, nil
}

// Invalidate forgets slug so the next Get refetches.
func (c *Cache) Invalidate(slug string) {
	c.drop(slug, "invalidated")
}

// ApplySection replaces one section of a cached projection with s.  It is
// a no-op when the slug or section is not cached.
func (c *Cache) ApplySection(slug string, s *site.Section) bool {
	v, ok := c.m.Load(slug)
	if !ok || s == nil {
		return false
	}
	ent := v.(*entry)
	for {
		old := ent.proj.Load()
		next, ok := withSection(old, s)
		if !ok {
			return false
		}
		if ent.proj.CompareAndSwap(old, next) {
			return true
		}
	}
}

// withSection copies only the page slice and the page that changes.
func withSection(p *site.Projection, s *site.Section) (*site.Projection, bool) {
	for i := range p.Pages {
		for j := range p.Pages[i].Sections {
			if p.Pages[i].Sections[j].ID != s.ID {
				continue
			}
			cp := *p
			cp.Pages = append([]site.Page(nil), p.Pages...)
			pg := cp.Pages[i]
			pg.Sections = append([]site.Section(nil), pg.Sections...)
			pg.Sections[j] = *s.Clone()
			cp.Pages[i] = pg
			return &cp, true
		}
	}
	return nil, false
}

func (c *Cache) drop(slug, why string) {
	if _, ok := c.m.LoadAndDelete(slug); ok {
		c.size.Add(-1)
		metrics.ProjectionsCached.Dec()
		metrics.ProjectionEvictTotal.Inc()
		c.log.Debug("projection dropped", zap.String("site", slug), zap.String("reason", why))
	}
}
