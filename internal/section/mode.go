package section

import "fmt"

// Mode selects how interactive elements behave in rendered output.
type Mode string

const (
	ModePublic    Mode = "public"    // live links, final output
	ModePreview   Mode = "preview"   // inert, mirrors public visually
	ModeDashboard Mode = "dashboard" // inert, shown inside the editor
)

// ParseMode maps a query value to a Mode.  "" means public.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePublic:
		return ModePublic, nil
	case ModePreview:
		return ModePreview, nil
	case ModeDashboard:
		return ModeDashboard, nil
	}
	return "", fmt.Errorf("section: unknown mode %q", s)
}

// Live reports whether navigation side effects are allowed.
func (m Mode) Live() bool { return m == ModePublic || m == "" }
