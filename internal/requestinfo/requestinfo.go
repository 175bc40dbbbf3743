//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight per-request hints: user-agent fingerprint, preferred
//  language, IP, and optional geolocation.  The editor uses Lang as the
//  default locale for suggestions, and the public renderer uses it for the
//  document's lang attribute.  These structs are inert, so they are safe to
//  log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Browser   string `json:"browser"`    // "Chrome", "Firefox", "Safari", etc.
	Version   string `json:"version"`    // "124.0.6367"
	OS        string `json:"os"`         // "MacOSX", "Windows", "Android", ...
	OSVersion string `json:"os_version"` // "14.5", "11"
	Device    string `json:"device"`     // "Desktop", "Mobile", "Tablet", or "Other"
	IsBot     bool   `json:"bot"`
}

// Info is stored in the request context by Enrich.
type Info struct {
	UA         UA        `json:"ua"`
	Locale     string    `json:"locale,omitempty"` // first Accept-Language tag, "en-us"
	Lang       string    `json:"lang,omitempty"`   // primary subtag, "en"
	IP         net.IP    `json:"ip,omitempty"`
	CountryISO string    `json:"country,omitempty"`
	City       string    `json:"city,omitempty"`
	Timestamp  time.Time `json:"ts"`
}

// GeoLookup is the subset of *geoip2.Reader Enrich needs.
type GeoLookup interface {
	City(ip net.IP) (*geoip2.City, error)
}

// OpenGeo opens a GeoLite2-City database.  An empty path disables geo
// lookups and returns (nil, nil).
func OpenGeo(dbPath string) (*geoip2.Reader, error) {
	if dbPath == "" {
		return nil, nil
	}
	return geoip2.Open(dbPath)
}

//
//  -----------------------------
//  Public helpers
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// WithInfo stores info in ctx.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext returns the pointer previously stored by Enrich, or nil.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

// LangOr returns the request language, or fallback when unknown.
func LangOr(ctx context.Context, fallback string) string {
	if info := FromContext(ctx); info != nil && info.Lang != "" {
		return info.Lang
	}
	return fallback
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// ParseUA converts a raw header using uasurfer.
func ParseUA(raw string) UA {
	u := surfer.Parse(raw)

	out := UA{
		Browser:   strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:   versionString(u.Browser.Version),
		OS:        strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion: versionString(u.OS.Version),
		IsBot:     u.IsBot(),
	}
	switch u.DeviceType {
	case surfer.DeviceComputer:
		out.Device = "Desktop"
	case surfer.DeviceTablet:
		out.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		out.Device = "Mobile"
	default:
		out.Device = "Other"
	}
	return out
}

// versionString renders 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionString(v surfer.Version) string {
	parts := []int{int(v.Major), int(v.Minor), int(v.Patch)}
	for len(parts) > 1 && parts[len(parts)-1] == 0 {
		parts = parts[:len(parts)-1]
	}
	if parts[0] == 0 && len(parts) == 1 {
		return ""
	}
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ".")
}

// primaryLocale returns the highest-weighted Accept-Language tag, ignoring
// "*".  Ties keep header order.
func primaryLocale(al string) string {
	best, bestQ := "", -1.0
	for _, part := range strings.Split(al, ",") {
		tag, q := strings.TrimSpace(part), 1.0
		if i := strings.Index(tag, ";"); i != -1 {
			if v, ok := strings.CutPrefix(strings.TrimSpace(tag[i+1:]), "q="); ok {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					q = f
				}
			}
			tag = strings.TrimSpace(tag[:i])
		}
		if tag == "" || tag == "*" || q <= 0 {
			continue
		}
		if q > bestQ {
			best, bestQ = strings.ToLower(tag), q
		}
	}
	return best
}

// langOf returns the primary subtag of a locale ("pt-br" → "pt").
func langOf(locale string) string {
	if i := strings.IndexAny(locale, "-_"); i != -1 {
		return locale[:i]
	}
	return locale
}
