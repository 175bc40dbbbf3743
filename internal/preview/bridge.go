package preview

import (
	"html/template"
	"time"

	"github.com/yanizio/sitebuilder/internal/metrics"
	"github.com/yanizio/sitebuilder/internal/site"
)

// Update is one draft change bound for a preview surface.  HTML, when set,
// is the freshly rendered section fragment carrying the draft value.
type Update struct {
	Site      string        `json:"site"`
	SectionID site.ID       `json:"section_id"`
	Key       string        `json:"key"`
	Value     string        `json:"value"`
	HTML      template.HTML `json:"html,omitempty"`
}

// Notifier receives debounced updates.  It runs on a timer goroutine.
type Notifier func(Update)

// Bridge debounces editor changes per (section, key) and hands the last
// value of each burst to Notify.  It reads drafts only; persistence is the
// editor's job.
type Bridge struct {
	deb    *Debouncer
	notify Notifier
}

// NewBridge wires a Notifier behind a debouncer.  clock may be nil.
func NewBridge(delay time.Duration, clock Clock, notify Notifier) *Bridge {
	return &Bridge{deb: NewDebouncer(delay, clock), notify: notify}
}

// Push schedules u, replacing any pending update for the same field.
func (b *Bridge) Push(u Update) {
	if b == nil || b.notify == nil {
		return
	}
	b.deb.Trigger(u.SectionID.String()+"\x00"+u.Key, func() {
		metrics.PreviewUpdatesTotal.Inc()
		b.notify(u)
	})
}

// Cancel drops every pending update.  Called on rebind so a stale draft
// never reaches the next section's preview.
func (b *Bridge) Cancel() {
	if b != nil {
		b.deb.CancelAll()
	}
}

// Close cancels pending updates and disables the bridge.
func (b *Bridge) Close() {
	if b != nil {
		b.deb.Stop()
	}
}

// Pending reports queued fields.
func (b *Bridge) Pending() int {
	if b == nil {
		return 0
	}
	return b.deb.Pending()
}
