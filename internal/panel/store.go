package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/sitebuilder/internal/auth"
)

// ErrNotLoaded is returned by Mutate and Persist before Load.
var ErrNotLoaded = errors.New("panel: not loaded")

// Document is the set of panel payload types.
type Document interface {
	Navigation | Print | Social
}

// Store owns one panel of one site.  Safe for concurrent use, though a
// Store is meant to have a single owner.
type Store[T Document] struct {
	db   *sqlx.DB
	site string
	kind Kind
	now  func() time.Time

	mu      sync.Mutex
	value   T
	version int
	loaded  bool
	dirty   bool
}

// NewStore binds a store to (site, kind).  Nothing is read until Load.
func NewStore[T Document](db *sqlx.DB, site string, kind Kind) *Store[T] {
	return &Store[T]{db: db, site: site, kind: kind, now: time.Now}
}

// Load hydrates from the database.  A missing row yields the zero document.
func (s *Store[T]) Load(ctx context.Context) error {
	rec, err := getRecord(ctx, s.db, s.site, s.kind)
	if err != nil {
		return fmt.Errorf("panel %s/%s: load: %w", s.site, s.kind, err)
	}
	var v T
	version := 0
	if rec != nil {
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			return fmt.Errorf("panel %s/%s: decode: %w", s.site, s.kind, err)
		}
		version = rec.Version
	}

	s.mu.Lock()
	s.value, s.version, s.loaded, s.dirty = v, version, true, false
	s.mu.Unlock()
	return nil
}

// Value returns a deep copy of the current document.
func (s *Store[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, _ := clone(s.value)
	return out
}

// Version reports the stored version the document was loaded at.
func (s *Store[T]) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Dirty reports unsaved changes.
func (s *Store[T]) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Mutate applies fn to a copy and keeps it only if it validates.
func (s *Store[T]) Mutate(fn func(*T)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	next, err := clone(s.value)
	if err != nil {
		return err
	}
	fn(&next)
	if err := Validate(next); err != nil {
		return err
	}
	s.value = next
	s.dirty = true
	return nil
}

// ReplaceJSON swaps the whole document for raw.  Unknown keys are rejected.
func (s *Store[T]) ReplaceJSON(raw []byte) error {
	var next T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	return s.Mutate(func(v *T) { *v = next })
}

// Persist writes unsaved changes.  It needs an authenticated actor and
// fails with ErrConflict when the row moved since Load.
func (s *Store[T]) Persist(ctx context.Context) error {
	actor, err := auth.Require(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	data, err := json.Marshal(s.value)
	expected := s.version
	s.mu.Unlock()
	if err != nil {
		return err
	}

	rec := &Record{
		Site:      s.site,
		Panel:     string(s.kind),
		Data:      data,
		UpdatedBy: actor,
		UpdatedAt: s.now().UTC(),
	}
	if err := putRecord(ctx, s.db, rec, expected); err != nil {
		return fmt.Errorf("panel %s/%s: persist: %w", s.site, s.kind, err)
	}

	s.mu.Lock()
	s.version = expected + 1
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// MarshalJSON emits the envelope the dashboard reads.
func (s *Store[T]) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(struct {
		Site    string `json:"site"`
		Panel   Kind   `json:"panel"`
		Version int    `json:"version"`
		Data    T      `json:"data"`
	}{s.site, s.kind, s.version, s.value})
}

func clone[T any](v T) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

//
// Kind-erased access for HTTP handlers
//

// Panel is the non-generic face of a Store.
type Panel interface {
	Load(ctx context.Context) error
	ReplaceJSON(raw []byte) error
	Persist(ctx context.Context) error
	Dirty() bool
	Version() int
	json.Marshaler
}

// Open returns a Store for kind.
func Open(db *sqlx.DB, site string, kind Kind) (Panel, error) {
	switch kind {
	case KindNavigation:
		return NewStore[Navigation](db, site, kind), nil
	case KindPrint:
		return NewStore[Print](db, site, kind), nil
	case KindSocial:
		return NewStore[Social](db, site, kind), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
}
