// internal/editor/pool.go
//
// Editor session pool.
//
// Context
// -------
// Each dashboard tab that selects a Section gets one Editor, addressed by a
// random UUID and owned by the user who opened it.  Sessions that see no
// request for IdleTTL are closed by a background sweep, which also cancels
// their pending preview timers.
//
// Notes
// -----
// • A session is visible only to its owner.  Another user asking for the
//   same ID gets "not found", never "forbidden".
// • One session holds a given (site, section) at a time, so at most one
//   save per Section is ever in flight.  Reopening a section you already
//   hold replaces the old session; a section held by someone else, or by
//   your own session mid-save, is refused with ErrSectionLocked.
// • Oxford commas, two spaces after periods.
package editor

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/site"
)

// Defaults for NewPool.
const (
	DefaultSessionIdle = 30 * time.Minute
	defaultSweep       = time.Minute
)

// ErrSectionLocked: another session currently holds the section.
var ErrSectionLocked = errors.New("editor: section is being edited elsewhere")

// Session is one bound Editor.
type Session struct {
	ID      uuid.UUID
	Site    string
	Page    string
	Section site.ID
	Owner   int64
	Editor  *Editor

	lastSeen atomic.Int64
}

// Pool holds open sessions.  Safe for concurrent use.
type Pool struct {
	idle time.Duration
	now  func() time.Time
	log  *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	holders  map[string]uuid.UUID // holdKey(site, section) → session

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewPool starts the idle sweeper.  idle ≤ 0 means DefaultSessionIdle.
func NewPool(idle time.Duration, log *zap.Logger) *Pool {
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	if log == nil {
		log = zap.L()
	}
	p := &Pool{
		idle:     idle,
		now:      time.Now,
		log:      log.Named("editor"),
		sessions: make(map[uuid.UUID]*Session),
		holders:  make(map[string]uuid.UUID),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	sweep := defaultSweep
	if idle < sweep {
		sweep = idle
	}
	go p.sweepLoop(sweep)
	return p
}

// Open creates an Editor from cfg, binds s, and registers the session as
// the holder of (siteSlug, s.ID).
func (p *Pool) Open(owner int64, siteSlug, page string, cfg Config, s *site.Section) (*Session, error) {
	if s == nil {
		return nil, ErrNotBound
	}
	if cfg.Site == "" {
		cfg.Site = siteSlug
	}
	sess := &Session{
		ID:      uuid.New(),
		Site:    siteSlug,
		Page:    page,
		Section: s.ID,
		Owner:   owner,
		Editor:  New(cfg),
	}
	sess.Editor.Bind(s)
	sess.lastSeen.Store(p.now().UnixNano())
	key := holdKey(siteSlug, s.ID)

	p.mu.Lock()
	if prevID, ok := p.holders[key]; ok {
		prev := p.sessions[prevID]
		if prev.Owner != owner || !prev.Editor.release() {
			p.mu.Unlock()
			sess.Editor.Close()
			return nil, ErrSectionLocked
		}
		delete(p.sessions, prevID)
		p.log.Debug("session replaced", zap.Stringer("session", prevID), zap.String("site", siteSlug))
	}
	p.sessions[sess.ID] = sess
	p.holders[key] = sess.ID
	p.mu.Unlock()

	p.log.Debug("session opened",
		zap.Stringer("session", sess.ID),
		zap.String("site", siteSlug),
		zap.String("section_id", s.ID.String()),
		zap.Int64("owner", owner))
	return sess, nil
}

func holdKey(siteSlug string, id site.ID) string { return siteSlug + "\x00" + id.String() }

// forgetLocked drops sess and its hold.  Caller holds p.mu.
func (p *Pool) forgetLocked(sess *Session) {
	delete(p.sessions, sess.ID)
	key := holdKey(sess.Site, sess.Section)
	if p.holders[key] == sess.ID {
		delete(p.holders, key)
	}
}

// Get returns the owner's session and marks it as used.
func (p *Pool) Get(id uuid.UUID, owner int64) (*Session, bool) {
	p.mu.Lock()
	sess, ok := p.sessions[id]
	p.mu.Unlock()
	if !ok || sess.Owner != owner {
		return nil, false
	}
	sess.lastSeen.Store(p.now().UnixNano())
	return sess, true
}

// Remove closes the owner's session.  It reports whether one existed.
func (p *Pool) Remove(id uuid.UUID, owner int64) bool {
	p.mu.Lock()
	sess, ok := p.sessions[id]
	if ok && sess.Owner == owner {
		p.forgetLocked(sess)
	}
	p.mu.Unlock()
	if !ok || sess.Owner != owner {
		return false
	}
	sess.Editor.Close()
	return true
}

// Len reports open sessions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Close stops the sweeper and closes every session.  Idempotent.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)
		<-p.done

		p.mu.Lock()
		all := p.sessions
		p.sessions = make(map[uuid.UUID]*Session)
		p.holders = make(map[string]uuid.UUID)
		p.mu.Unlock()
		for _, sess := range all {
			sess.Editor.Close()
		}
	})
}

func (p *Pool) sweepLoop(every time.Duration) {
	defer close(p.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-t.C:
			p.sweep()
		}
	}
}

// sweep closes sessions idle longer than the pool TTL.
func (p *Pool) sweep() {
	cutoff := p.now().Add(-p.idle).UnixNano()

	var expired []*Session
	p.mu.Lock()
	for _, sess := range p.sessions {
		if sess.lastSeen.Load() < cutoff {
			p.forgetLocked(sess)
			expired = append(expired, sess)
		}
	}
	p.mu.Unlock()

	for _, sess := range expired {
		sess.Editor.Close()
		p.log.Debug("session expired", zap.Stringer("session", sess.ID), zap.String("site", sess.Site))
	}
}
