package editor

import (
	"github.com/yanizio/sitebuilder/internal/site"
)

// FieldState is one row of the editing form.
type FieldState struct {
	ID    site.ID `json:"id,omitempty"`
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value string  `json:"value"`
	Dirty bool    `json:"dirty"`
}

// State is an immutable view of an Editor.  An unbound editor reports
// Bound == false ("nothing selected"); a bound section with no fields
// reports an empty Fields slice ("nothing to edit").
type State struct {
	Bound        bool         `json:"bound"`
	SectionID    site.ID      `json:"section_id,omitempty"`
	Identifier   string       `json:"identifier,omitempty"`
	InternalName string       `json:"internal_name,omitempty"`
	Fields       []FieldState `json:"fields"`

	Saving     bool `json:"saving"`
	Suggesting bool `json:"suggesting"`
	Saved      bool `json:"saved"`

	SaveError    string `json:"save_error,omitempty"`
	SuggestError string `json:"suggest_error,omitempty"`

	saveErr    error
	suggestErr error
}

// SaveErr returns the last save failure, if any.
func (s State) SaveErr() error { return s.saveErr }

// SuggestErr returns the last suggestion failure, if any.
func (s State) SuggestErr() error { return s.suggestErr }

// Dirty reports whether any field differs from its persisted value.
func (s State) Dirty() bool {
	for _, f := range s.Fields {
		if f.Dirty {
			return true
		}
	}
	return false
}

// Values returns key → draft value.
func (s State) Values() map[string]string {
	out := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Key] = f.Value
	}
	return out
}

// Snapshot captures the current state.
func (e *Editor) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State{Fields: []FieldState{}}
	if e.section == nil {
		return st
	}
	st.Bound = true
	st.SectionID = e.section.ID
	st.Identifier = e.section.Identifier
	st.InternalName = e.section.InternalName
	for _, f := range e.section.SortedFields() {
		v := e.draft[f.Key]
		st.Fields = append(st.Fields, FieldState{
			ID:    f.ID,
			Key:   f.Key,
			Label: f.DisplayLabel(),
			Value: v,
			Dirty: v != e.persisted[f.Key],
		})
	}
	st.Saving, st.Suggesting, st.Saved = e.saving, e.suggesting, e.saved
	st.saveErr, st.suggestErr = e.saveErr, e.suggestErr
	if e.saveErr != nil {
		st.SaveError = e.saveErr.Error()
	}
	if e.suggestErr != nil {
		st.SuggestError = e.suggestErr.Error()
	}
	return st
}
