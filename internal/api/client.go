// internal/api/client.go
//
// Builder API client.
//
// Context
// -------
// The builder API owns every tenant's pages, sections, and fields.  This
// service only reads projections, writes field values back, and asks for
// suggestions.  All interchange is JSON over HTTP with a bearer token.
//
// Retries
// -------
// Idempotent calls (GET, PUT, PATCH) go through go-retryablehttp and are
// retried on connection errors and 5xx with exponential backoff.  The
// suggestion POST is sent once; a retried suggestion would bill twice and
// could return a different answer.
//
// Notes
// -----
// • Every error the client returns wraps exactly one sentinel from
//   errors.go, so callers switch on errors.Is and never on status codes.
// • Oxford commas, two spaces after periods.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/cache"
	"github.com/yanizio/sitebuilder/internal/site"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRetryMax  = 3
	defaultPageCache = 256
	maxErrorBody     = 4 << 10
	userAgent        = "sitebuilder-render/1"
)

// Options configures a Client.  BaseURL is required.
type Options struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	RetryMax int

	// RetryWaitMin and RetryWaitMax bound the backoff.  Zero keeps the
	// retryablehttp defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// PageCacheSize bounds the last-good page snapshots.
	PageCacheSize int
	// DefaultPages serve FetchPage when the API and the snapshot cache both
	// come up empty.  Keyed by page slug.
	DefaultPages map[string]site.Page

	Logger *zap.Logger
}

// Client talks to the builder API.  Safe for concurrent use.
type Client struct {
	base     *url.URL
	token    string
	rc       *retryablehttp.Client
	pages    *cache.LRU[string, site.Page]
	defaults map[string]site.Page
	log      *zap.Logger
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: invalid base url %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryMax < 0 {
		opts.RetryMax = 0
	} else if opts.RetryMax == 0 {
		opts.RetryMax = defaultRetryMax
	}
	if opts.PageCacheSize <= 0 {
		opts.PageCacheSize = defaultPageCache
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = retryLogger{opts.Logger.Named("api").Sugar()}
	// Hand the final response back instead of a "giving up" error so the
	// caller still sees the status code.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		base:     base,
		token:    opts.Token,
		rc:       rc,
		pages:    cache.New[string, site.Page](opts.PageCacheSize),
		defaults: opts.DefaultPages,
		log:      opts.Logger,
	}, nil
}

// endpoint joins path segments onto the base URL.  Segments are escaped.
func (c *Client) endpoint(q url.Values, segs ...string) string {
	u := *c.base
	esc := make([]string, len(segs))
	for i, s := range segs {
		esc[i] = url.PathEscape(s)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/" + strings.Join(esc, "/") + "/"
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) decorate(h http.Header) {
	h.Set("Accept", "application/json")
	h.Set("User-Agent", userAgent)
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
}

// doJSON runs an idempotent request with retries and decodes a 2xx body
// into out (which may be nil).  Non-2xx and transport errors come back as
// *Error of the given kind.
func (c *Client) doJSON(ctx context.Context, kind error, op, method, target string, in, out any) error {
	var body any
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: kind, Op: op, Err: err}
		}
		body = b
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &Error{Kind: kind, Op: op, Err: err}
	}
	c.decorate(req.Header)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.rc.Do(req)
	if err != nil {
		return &Error{Kind: kind, Op: op, Err: err}
	}
	return decode(resp, kind, op, out)
}

func decode(resp *http.Response, kind error, op string, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: kind, Op: op, Status: resp.StatusCode, Detail: detail(resp.Body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: kind, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// detail extracts a short message from an error body.  DRF-style
// {"detail": "..."} wins; otherwise the trimmed text is used.
func detail(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var env struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(b, &env) == nil {
		if env.Detail != "" {
			return env.Detail
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return strings.TrimSpace(string(bytes.ToValidUTF8(b, nil)))
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct{ s *zap.SugaredLogger }

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
