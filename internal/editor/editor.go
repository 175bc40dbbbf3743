// internal/editor/editor.go
//
// Field editor: one dashboard session's view of one Section.
//
// Context
// -------
// The editor keeps two copies of the bound Section's field values:
//
//   - persisted – what the builder API last accepted (or what Bind saw).
//   - draft     – what the user is typing.
//
// Change edits the draft synchronously and hands the value to the preview
// bridge, which debounces per field.  Save sends the whole draft, every
// field in field order, as one atomic update.  Reset copies persisted back
// over the draft.  Suggest merges non-empty suggested values into the draft
// and never saves.
//
// Concurrency
// -----------
//   - One mutex guards all state.  Network calls run with the lock
//     released, so Change keeps working while a save is in flight.
//   - Save and Suggest are mutually exclusive; the loser gets ErrBusy.
//   - Bind and Close bump a generation counter.  A response that comes
//     back for an older generation is dropped without touching state.
//
// Notes
// -----
// • Save errors and suggestion errors live in separate slots so the UI
//   never confuses one for the other.
// • Oxford commas, two spaces after periods.
package editor

import (
	"context"
	"errors"
	"html/template"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/api"
	"github.com/yanizio/sitebuilder/internal/auth"
	"github.com/yanizio/sitebuilder/internal/metrics"
	"github.com/yanizio/sitebuilder/internal/preview"
	"github.com/yanizio/sitebuilder/internal/site"
)

// DefaultSuccessWindow is how long Saved stays true after a save.
const DefaultSuccessWindow = 3 * time.Second

var (
	// ErrBusy means a save or suggestion is already in flight.
	ErrBusy = errors.New("editor: request already in flight")
	// ErrNotBound means no section is selected.
	ErrNotBound = errors.New("editor: no section bound")
	// ErrUnknownField means the key is not a field of the bound section.
	ErrUnknownField = errors.New("editor: unknown field")
)

// Persister writes a section's full field set.  *api.Client satisfies it.
type Persister interface {
	UpdateSectionFields(ctx context.Context, id site.ID, fields []site.FieldValue) error
}

// Suggester returns suggested values keyed by field key.  *api.Client
// satisfies it.
type Suggester interface {
	Suggest(ctx context.Context, id site.ID, locale, tone string) (map[string]string, error)
}

// Config wires an Editor.  Only Persister is required.
type Config struct {
	Persister Persister
	Suggester Suggester // nil disables Suggest

	// Site is the tenant slug stamped on preview updates.
	Site string

	// Notify receives debounced draft changes.  Nil disables the preview.
	Notify preview.Notifier
	// Render, when set, fills Update.HTML from the draft section at the
	// moment the debounce fires.
	Render func(*site.Section) template.HTML

	PreviewDelay  time.Duration // 0 → preview.DefaultDelay
	SuccessWindow time.Duration // 0 → DefaultSuccessWindow
	Clock         preview.Clock // nil → preview.RealClock

	// OnSaved runs after every successful save with the new persisted
	// section.  It runs outside the editor lock.
	OnSaved func(*site.Section)

	Logger *zap.Logger
}

// Editor is safe for concurrent use.
type Editor struct {
	cfg    Config
	bridge *preview.Bridge
	log    *zap.Logger

	mu         sync.Mutex
	section    *site.Section // persisted snapshot, nil when unbound
	persisted  map[string]string
	draft      map[string]string
	gen        uint64
	saving     bool
	suggesting bool
	saved      bool
	savedTimer preview.Timer
	saveErr    error
	suggestErr error
}

// New returns an unbound editor.
func New(cfg Config) *Editor {
	if cfg.SuccessWindow <= 0 {
		cfg.SuccessWindow = DefaultSuccessWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = preview.RealClock
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}
	e := &Editor{cfg: cfg, log: cfg.Logger}
	if cfg.Notify != nil {
		e.bridge = preview.NewBridge(cfg.PreviewDelay, cfg.Clock, e.deliver)
	}
	return e
}

/*──────────────────────────── binding ────────────────────────────*/

// Bind snapshots s and discards any draft of the previous section.  A nil
// section unbinds.  Pending preview updates are cancelled either way.
func (e *Editor) Bind(s *site.Section) {
	e.bridge.Cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	if s == nil {
		e.section, e.persisted, e.draft = nil, nil, nil
		return
	}
	e.section = s.Clone()
	e.persisted = e.section.Values()
	e.draft = e.section.Values()
}

// Close unbinds and disables the preview for good.
func (e *Editor) Close() {
	e.bridge.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.section, e.persisted, e.draft = nil, nil, nil
}

// release closes e unless a save or suggestion is in flight.  The check and
// the unbind happen under one lock, so a released editor can never start
// another save.
func (e *Editor) release() bool {
	e.mu.Lock()
	if e.saving || e.suggesting {
		e.mu.Unlock()
		return false
	}
	e.resetLocked()
	e.section, e.persisted, e.draft = nil, nil, nil
	e.mu.Unlock()

	e.bridge.Close()
	return true
}

// resetLocked clears per-binding status and invalidates in-flight calls.
func (e *Editor) resetLocked() {
	e.gen++
	e.saving, e.suggesting = false, false
	e.clearStatusLocked()
}

func (e *Editor) clearStatusLocked() {
	e.saved = false
	if e.savedTimer != nil {
		e.savedTimer.Stop()
		e.savedTimer = nil
	}
	e.saveErr = nil
	e.suggestErr = nil
}

/*──────────────────────────── drafting ───────────────────────────*/

// Change sets the draft value of key and schedules a preview update.
func (e *Editor) Change(key, value string) error {
	e.mu.Lock()
	if e.section == nil {
		e.mu.Unlock()
		return ErrNotBound
	}
	if _, ok := e.persisted[key]; !ok {
		e.mu.Unlock()
		return ErrUnknownField
	}
	e.draft[key] = value
	e.saved = false
	e.saveErr = nil
	id := e.section.ID
	e.mu.Unlock()

	e.push(id, key, value)
	return nil
}

// Reset copies persisted values over the draft and clears all indicators.
// The preview is told about every field that was dirty.
func (e *Editor) Reset() error {
	e.mu.Lock()
	if e.section == nil {
		e.mu.Unlock()
		return ErrNotBound
	}
	var reverted []site.FieldValue
	for k, v := range e.persisted {
		if e.draft[k] != v {
			reverted = append(reverted, site.FieldValue{Key: k, Value: v})
		}
		e.draft[k] = v
	}
	e.clearStatusLocked()
	id := e.section.ID
	e.mu.Unlock()

	for _, fv := range reverted {
		e.push(id, fv.Key, fv.Value)
	}
	return nil
}

/*──────────────────────────── saving ─────────────────────────────*/

// Save persists the full draft.  It needs an authenticated actor in ctx.
// On failure the draft is kept and the error is recorded for Snapshot.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.section == nil {
		e.mu.Unlock()
		return ErrNotBound
	}
	actor, err := auth.Require(ctx)
	if err != nil {
		e.saved = false
		e.saveErr = err
		e.mu.Unlock()
		metrics.EditorSavesTotal.WithLabelValues("unauthenticated").Inc()
		return err
	}
	if e.saving || e.suggesting {
		e.mu.Unlock()
		return ErrBusy
	}
	payload := e.payloadLocked()
	id, gen := e.section.ID, e.gen
	e.saving = true
	e.saved = false
	e.saveErr = nil
	e.mu.Unlock()

	err = e.cfg.Persister.UpdateSectionFields(ctx, id, payload)
	if err != nil && !errors.Is(err, api.ErrPersistence) {
		err = &api.Error{Kind: api.ErrPersistence, Op: "update fields", Err: err}
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		e.log.Debug("dropping save result for stale binding", zap.String("section_id", id.String()))
		return err
	}
	e.saving = false
	if err != nil {
		e.saveErr = err
		e.mu.Unlock()
		metrics.EditorSavesTotal.WithLabelValues("error").Inc()
		e.log.Warn("section save failed",
			zap.String("site", e.cfg.Site),
			zap.String("section_id", id.String()),
			zap.Int64("actor", actor),
			zap.Error(err))
		return err
	}

	for _, fv := range payload {
		e.persisted[fv.Key] = fv.Value
	}
	e.section = e.section.WithValues(e.persisted)
	e.saved = true
	if e.savedTimer != nil {
		e.savedTimer.Stop()
	}
	e.savedTimer = e.cfg.Clock.AfterFunc(e.cfg.SuccessWindow, func() { e.expireSaved(gen) })
	saved := e.section.Clone()
	e.mu.Unlock()

	metrics.EditorSavesTotal.WithLabelValues("ok").Inc()
	e.log.Info("section saved",
		zap.String("site", e.cfg.Site),
		zap.String("section_id", id.String()),
		zap.Int64("actor", actor),
		zap.Int("fields", len(payload)))
	if e.cfg.OnSaved != nil {
		e.cfg.OnSaved(saved)
	}
	return nil
}

// payloadLocked lists every field in field order with its draft value.
func (e *Editor) payloadLocked() []site.FieldValue {
	fields := e.section.SortedFields()
	out := make([]site.FieldValue, 0, len(fields))
	for _, f := range fields {
		out = append(out, site.FieldValue{Key: f.Key, Value: e.draft[f.Key]})
	}
	return out
}

func (e *Editor) expireSaved(gen uint64) {
	e.mu.Lock()
	if e.gen == gen {
		e.saved = false
		e.savedTimer = nil
	}
	e.mu.Unlock()
}

/*──────────────────────────── suggesting ─────────────────────────*/

// Suggest asks for suggested values and merges the non-empty ones for known
// keys into the draft.  It returns the merged keys.  A failure leaves the
// draft untouched and is recorded apart from save errors.
func (e *Editor) Suggest(ctx context.Context, locale, tone string) ([]string, error) {
	e.mu.Lock()
	if e.section == nil {
		e.mu.Unlock()
		return nil, ErrNotBound
	}
	if e.cfg.Suggester == nil {
		err := &api.Error{Kind: api.ErrSuggestion, Op: "suggest", Detail: "suggestions are not configured"}
		e.suggestErr = err
		e.mu.Unlock()
		return nil, err
	}
	if e.saving || e.suggesting {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	id, gen := e.section.ID, e.gen
	e.suggesting = true
	e.suggestErr = nil
	e.mu.Unlock()

	suggested, err := e.cfg.Suggester.Suggest(ctx, id, locale, tone)
	if err != nil && !errors.Is(err, api.ErrSuggestion) {
		err = &api.Error{Kind: api.ErrSuggestion, Op: "suggest", Err: err}
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return nil, err
	}
	e.suggesting = false
	if err != nil {
		e.suggestErr = err
		e.mu.Unlock()
		metrics.EditorSuggestionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var merged []site.FieldValue
	for _, f := range e.section.SortedFields() {
		if v := suggested[f.Key]; v != "" {
			e.draft[f.Key] = v
			merged = append(merged, site.FieldValue{Key: f.Key, Value: v})
		}
	}
	if len(merged) == 0 {
		err = &api.Error{Kind: api.ErrSuggestion, Op: "suggest", Detail: "no usable values"}
		e.suggestErr = err
		e.mu.Unlock()
		metrics.EditorSuggestionsTotal.WithLabelValues("empty").Inc()
		return nil, err
	}
	e.saved = false
	e.mu.Unlock()

	metrics.EditorSuggestionsTotal.WithLabelValues("ok").Inc()
	keys := make([]string, 0, len(merged))
	for _, fv := range merged {
		keys = append(keys, fv.Key)
		e.push(id, fv.Key, fv.Value)
	}
	return keys, nil
}

/*──────────────────────────── preview ────────────────────────────*/

func (e *Editor) push(id site.ID, key, value string) {
	e.bridge.Push(preview.Update{Site: e.cfg.Site, SectionID: id, Key: key, Value: value})
}

// deliver runs when a debounce fires.  Updates for a section that is no
// longer bound are dropped.
func (e *Editor) deliver(u preview.Update) {
	e.mu.Lock()
	if e.section == nil || e.section.ID != u.SectionID {
		e.mu.Unlock()
		return
	}
	var draft *site.Section
	if e.cfg.Render != nil {
		draft = e.section.WithValues(e.draft)
	}
	e.mu.Unlock()

	if draft != nil {
		u.HTML = e.cfg.Render(draft)
	}
	e.cfg.Notify(u)
}

// Draft returns a copy of the bound section carrying draft values.
func (e *Editor) Draft() (*site.Section, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.section == nil {
		return nil, false
	}
	return e.section.WithValues(e.draft), true
}
