// internal/panel/panel.go
//
// Editor panels: per-site dashboard settings that sit beside the section
// editor (navigation, print, and social).
//
// Context
// -------
// Each panel is a small typed document stored as JSON in the
// `editor_panel` table, one row per (site, panel).  A Store owns exactly
// one panel for one site for the lifetime of a request:
//
//  1. Load     – hydrate from the database (zero value when no row).
//  2. Mutate   – change the in-memory copy; validation runs before the
//                change is accepted.
//  3. Persist  – write back with an optimistic version check.
//
// Nothing here is global.  Two requests editing the same panel each get
// their own Store, and the slower Persist loses with ErrConflict.
//
// Notes
// -----
// • Validation uses go-playground/validator struct tags.
// • Oxford commas, two spaces after periods.
package panel

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Kind names a panel.  It is also the `panel` column value.
type Kind string

const (
	KindNavigation Kind = "navigation"
	KindPrint      Kind = "print"
	KindSocial     Kind = "social"
)

// ErrUnknownKind is returned for a panel name with no document type.
var ErrUnknownKind = errors.New("panel: unknown kind")

// ParseKind maps a route segment to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindNavigation, KindPrint, KindSocial:
		return k, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
}

//
// Documents
//

// NavLink is one entry of a custom navigation menu.
type NavLink struct {
	Label string `json:"label" validate:"required,max=64"`
	Href  string `json:"href"  validate:"required,max=512"`
}

// Navigation controls the generated site menu.
type Navigation struct {
	Sticky    bool      `json:"sticky"`
	ShowPages bool      `json:"show_pages"`
	Links     []NavLink `json:"links" validate:"max=20,dive"`
}

// Print controls the print stylesheet.
type Print struct {
	HideNavigation bool   `json:"hide_navigation"`
	PageSize       string `json:"page_size" validate:"omitempty,oneof=A4 Letter Legal"`
	Footer         string `json:"footer"    validate:"max=256"`
}

// Social lists profile links by network.
type Social struct {
	Profiles map[string]string `json:"profiles" validate:"max=12,dive,keys,alpha,max=32,endkeys,url"`
	ShareBar bool              `json:"share_bar"`
}

var validate = validator.New()

// Validate runs struct-tag validation on any panel document.
func Validate(doc any) error {
	if err := validate.Struct(doc); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return &ValidationError{Fields: fieldNames(ve)}
		}
		return err
	}
	return nil
}

// ValidationError lists the offending field namespaces, sorted.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("panel: invalid fields %v", e.Fields)
}

func fieldNames(ve validator.ValidationErrors) []string {
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		out = append(out, fe.Namespace())
	}
	sort.Strings(out)
	return out
}
