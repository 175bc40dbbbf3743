// evictor.go houses the eviction loop for Cache.  Every EvictInterval it
// scans the map and removes:
//
//   - projections idle longer than IdleTTL
//   - least-recently-used projections when map size exceeds MaxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package projection

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

func (c *Cache) evictLoop() {
	defer close(c.done)
	defer c.evictTicker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-c.evictTicker.C:
			c.evict()
		}
	}
}

func (c *Cache) evict() {
	now := c.opts.now().UnixNano()

	// ----------------------------------------------------------------
	// Idle eviction pass
	// ----------------------------------------------------------------
	c.m.Range(func(key, value any) bool {
		idle := time.Duration(now - value.(*entry).lastSeen.Load())
		if idle > c.opts.IdleTTL {
			c.drop(key.(string), "idle")
			c.log.Info("projection evicted",
				zap.String("site", key.(string)),
				zap.Duration("idle", idle.Truncate(time.Second)))
		}
		return true
	})

	// ----------------------------------------------------------------
	// LRU eviction pass
	// ----------------------------------------------------------------
	type kv struct {
		key string
		at  int64
	}
	var all []kv
	c.m.Range(func(key, value any) bool {
		all = append(all, kv{key: key.(string), at: value.(*entry).lastSeen.Load()})
		return true
	})
	if len(all) <= c.opts.MaxEntries {
		return
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
	for i := 0; i < len(all)-c.opts.MaxEntries; i++ {
		c.drop(all[i].key, "lru")
		c.log.Info("projection evicted (LRU pressure)", zap.String("site", all[i].key))
	}
}
