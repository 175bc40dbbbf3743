// internal/handler/handler.go
//
// HTTP surface of the render service.
//
// Context
// -------
// One chi router serves three audiences:
//
//   - Visitors: /s/{site} and /s/{site}/{page} render a tenant's published
//     projection in public mode.  /pages/{page} renders a standalone page
//     snapshot (platform pages such as "maintenance") with the default
//     family.
//   - The dashboard iframe: /preview/{site}/{page} renders the same pages
//     inert, and /preview/{site}/ws streams debounced draft fragments.
//   - The dashboard itself: /dashboard/editor drives Field Editor sessions,
//     and /dashboard/panels stores per-site panel settings.  /dashboard/logout
//     expires the cookie; /dashboard/dev/login exists only when DevLogin is
//     set.
//
// Middleware order
// ----------------
//
//	RequestID → Recoverer → ForceHTTPS → Security → requestinfo.Enrich →
//	session.Middleware → routes
//
// Dashboard writes additionally pass csrf.Protect.  Preview routes swap
// the frame policy to same-origin so the dashboard can embed them.
//
// Notes
// -----
// • Handlers never write to the builder API on their own.  Every write goes
//   through an Editor or a panel Store, which check the actor first.
// • Oxford commas, two spaces after periods.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/acl"
	"github.com/yanizio/sitebuilder/internal/csrf"
	"github.com/yanizio/sitebuilder/internal/editor"
	"github.com/yanizio/sitebuilder/internal/middleware"
	"github.com/yanizio/sitebuilder/internal/panel"
	"github.com/yanizio/sitebuilder/internal/preview"
	"github.com/yanizio/sitebuilder/internal/render"
	"github.com/yanizio/sitebuilder/internal/requestinfo"
	"github.com/yanizio/sitebuilder/internal/session"
	"github.com/yanizio/sitebuilder/internal/site"
)

// renderTimeout bounds public and preview page requests.
const renderTimeout = 15 * time.Second

// Projections is satisfied by *projection.Cache.
type Projections interface {
	Get(ctx context.Context, slug string) (*site.Projection, error)
	ApplySection(slug string, s *site.Section) bool
	Invalidate(slug string)
}

// Backend is the builder API surface the handlers need.  *api.Client
// satisfies it.
type Backend interface {
	editor.Persister
	editor.Suggester
	FetchPage(ctx context.Context, slug, locale string) (*site.Page, error)
}

// PanelOpener returns the store for one (site, panel) pair.
type PanelOpener func(site string, kind panel.Kind) (panel.Panel, error)

// Deps wires the router.  Projections, Backend, Renderer, Hub, Editors,
// Sessions, and CSRF are required.
type Deps struct {
	Projections Projections
	Backend     Backend
	Renderer    *render.Renderer
	Hub         *preview.Hub
	Editors     *editor.Pool
	Sessions    *session.Manager
	CSRF        *csrf.Protector

	Panels     PanelOpener       // nil → panel routes answer 503
	Authorizer acl.Authorizer    // nil → any signed-in user may edit
	Geo        requestinfo.GeoLookup

	ForceHTTPS    bool
	DevLogin      bool // mounts POST /dashboard/dev/login
	PreviewDelay  time.Duration
	SuccessWindow time.Duration

	Logger *zap.Logger
}

// Server holds the wired dependencies.
type Server struct {
	d   Deps
	log *zap.Logger
}

// New returns the root handler.
func New(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.L()
	}
	s := &Server{d: d, log: d.Logger.Named("http")}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler { return middleware.ForceHTTPS(s.d.ForceHTTPS, next) })
	r.Use(middleware.Security)
	r.Use(requestinfo.Enrich(s.d.Geo))
	r.Use(s.d.Sessions.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public render.
	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(renderTimeout))
		r.Get("/s/{site}", s.publicPage)
		r.Get("/s/{site}/{page}", s.publicPage)
		r.Get("/pages/{page}", s.standalonePage)
	})

	// Preview, embedded by the dashboard.
	r.Route("/preview", func(r chi.Router) {
		r.Use(middleware.FrameSameOrigin)
		r.Get("/client.js", serveClientJS)
		r.Group(func(r chi.Router) {
			r.Use(acl.RequirePermission(s.d.Authorizer, siteParam, "editor", "view"))
			r.Get("/{site}/ws", s.previewSocket)
			r.With(chimw.Timeout(renderTimeout)).Get("/{site}/{page}", s.previewPage)
		})
	})

	// Dashboard API.
	r.Route("/dashboard", func(r chi.Router) {
		r.Method(http.MethodGet, "/csrf", s.d.CSRF)
		r.Group(func(r chi.Router) {
			r.Use(s.d.CSRF.Protect)

			r.Post("/logout", s.logout)
			if s.d.DevLogin {
				r.Post("/dev/login", s.devLogin)
			}

			r.Post("/editor", s.openEditor)
			r.Route("/editor/{id}", func(r chi.Router) {
				r.Get("/", s.editorState)
				r.Delete("/", s.closeEditor)
				r.Post("/fields", s.changeFields)
				r.Post("/save", s.saveEditor)
				r.Post("/reset", s.resetEditor)
				r.Post("/suggest", s.suggestEditor)
			})

			r.Route("/panels/{site}/{panel}", func(r chi.Router) {
				r.With(acl.RequirePermission(s.d.Authorizer, siteParam, "panels", "view")).Get("/", s.getPanel)
				r.With(acl.RequirePermission(s.d.Authorizer, siteParam, "panels", "edit")).Put("/", s.putPanel)
			})
		})
	})

	return r
}

// siteParam feeds acl.RequirePermission.
func siteParam(r *http.Request) string { return chi.URLParam(r, "site") }
