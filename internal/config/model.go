// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                               – dotenv values,
//   • `conf/global.yaml`                            – primary static file,
//   • `SITEBUILDER_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • Durations accept Go syntax ("300ms", "1m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
	// WSOrigins are extra origin patterns allowed to open the preview socket.
	WSOrigins []string `koanf:"ws_origins"`
}

//
// Builder API section
//

// API points at the external builder API.
type API struct {
	BaseURL  string        `koanf:"base_url" validate:"required,url"`
	Token    string        `koanf:"token"`
	Timeout  time.Duration `koanf:"timeout"   validate:"gte=0"`
	RetryMax int           `koanf:"retry_max" validate:"gte=-1,lte=10"`
	// DefaultPages is a YAML file of fallback pages.  Empty uses the
	// built-in set.
	DefaultPages string `koanf:"default_pages"`
}

//
// Editor section
//

// Editor tunes the field editor and its preview.
type Editor struct {
	PreviewDelay  time.Duration `koanf:"preview_delay"  validate:"gte=0"`
	SuccessWindow time.Duration `koanf:"success_window" validate:"gte=0"`
	// SessionIdle closes editor sessions nobody touched for this long.
	SessionIdle time.Duration `koanf:"session_idle" validate:"gte=0"`
}

//
// Projection cache section
//

// Cache bounds the in-memory projection cache.
type Cache struct {
	TTL        time.Duration `koanf:"ttl"         validate:"gte=0"`
	IdleTTL    time.Duration `koanf:"idle_ttl"    validate:"gte=0"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"`
}

//
// Database section
//

// Database is optional.  Without a DSN the panel endpoints are disabled
// and dashboard access relies on the session alone.
type Database struct {
	DSN string `koanf:"dsn"`
}

//
// Session section
//

// Session signs the dashboard cookie.
type Session struct {
	Secret string        `koanf:"secret" validate:"required,min=32"`
	TTL    time.Duration `koanf:"ttl"    validate:"gte=0"`
	// DevLogin mounts a sign-in route that trusts any user id.  Local
	// development only.
	DevLogin bool `koanf:"dev_login"`
}

//
// Geo section
//

// Geo points at an optional MaxMind database used for locale hints.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or SITEBUILDER_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	API      API      `koanf:"api"`
	Editor   Editor   `koanf:"editor"`
	Cache    Cache    `koanf:"cache"`
	Database Database `koanf:"database"`
	Session  Session  `koanf:"session"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
