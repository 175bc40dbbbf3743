// cmd/web/main.go
//
// Sitebuilder render service – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Start the rotating JSON logger (tees to console when running in a
//     TTY).
//
//  2. Connect to Vault when VAULT_ADDR is set or an env override uses a
//     `vault:` reference, then load and validate configuration.
//
//  3. Build the builder API client with its default-page fallback.
//
//  4. Build the projection cache (lazy-loads each site on first hit) and the
//     renderer over every registered section family.
//
//  5. Open the dashboard DB when a DSN is configured.  It backs panel
//     settings and the role checks; without it both degrade gracefully.
//
//  6. Wire the preview hub, the editor session pool, sessions, and CSRF,
//     then serve until SIGINT or SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yanizio/sitebuilder/internal/acl"
	"github.com/yanizio/sitebuilder/internal/api"
	"github.com/yanizio/sitebuilder/internal/component"
	"github.com/yanizio/sitebuilder/internal/config"
	"github.com/yanizio/sitebuilder/internal/csrf"
	"github.com/yanizio/sitebuilder/internal/database"
	"github.com/yanizio/sitebuilder/internal/editor"
	"github.com/yanizio/sitebuilder/internal/handler"
	"github.com/yanizio/sitebuilder/internal/logger"
	"github.com/yanizio/sitebuilder/internal/panel"
	"github.com/yanizio/sitebuilder/internal/preview"
	"github.com/yanizio/sitebuilder/internal/projection"
	"github.com/yanizio/sitebuilder/internal/render"
	"github.com/yanizio/sitebuilder/internal/requestinfo"
	"github.com/yanizio/sitebuilder/internal/server"
	"github.com/yanizio/sitebuilder/internal/session"
	"github.com/yanizio/sitebuilder/internal/vault"

	_ "github.com/yanizio/sitebuilder/components/basic"
	_ "github.com/yanizio/sitebuilder/components/restaurantmodern"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl, closeLog, err := logger.New(logger.Options{
		Root:  config.RootDir(),
		Tee:   logger.RunningInTTY(),
		Level: os.Getenv(config.EnvPrefix + "LOG_LEVEL"),
	})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer closeLog()

	if err := run(ctx, zl); err != nil {
		zl.Error("sitebuilder exited", zap.Error(err))
		closeLog()
		os.Exit(1)
	}
}

func run(ctx context.Context, zl *zap.Logger) error {
	//
	// ── 1.  Secrets and configuration ───────────────────────────────────
	//
	var secrets config.SecretResolver
	if os.Getenv("VAULT_ADDR") != "" || config.NeedsSecrets(os.Environ()) {
		vc, err := vault.New(ctx, vault.Options{Renew: true, Logger: zl})
		if err != nil {
			return err
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		return err
	}

	//
	// ── 2.  Builder API client ──────────────────────────────────────────
	//
	defaults, err := api.LoadDefaultPages(cfg.API.DefaultPages)
	if err != nil {
		return err
	}
	client, err := api.New(api.Options{
		BaseURL:      cfg.API.BaseURL,
		Token:        cfg.API.Token,
		Timeout:      cfg.API.Timeout,
		RetryMax:     cfg.API.RetryMax,
		DefaultPages: defaults,
		Logger:       zl,
	})
	if err != nil {
		return err
	}

	//
	// ── 3.  Projection cache and renderer ───────────────────────────────
	//
	projections := projection.New(client, projection.Options{
		TTL:        cfg.Cache.TTL,
		IdleTTL:    cfg.Cache.IdleTTL,
		MaxEntries: cfg.Cache.MaxEntries,
		Logger:     zl,
	})
	defer projections.Close()

	catalog, err := component.Catalog()
	if err != nil {
		return err
	}
	zl.Info("section families registered", zap.Strings("families", component.Names()))
	renderer := render.New(catalog, zl)

	//
	// ── 4.  Optional dashboard DB ───────────────────────────────────────
	//
	var (
		panels handler.PanelOpener
		az     acl.Authorizer
	)
	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		panels = func(site string, kind panel.Kind) (panel.Panel, error) { return panel.Open(db, site, kind) }
		az = acl.Checker{DB: db.DB}
		zl.Info("dashboard DB online")
	} else {
		zl.Warn("database.dsn not set, panel storage and role checks disabled")
	}

	//
	// ── 5.  Request hints, preview, sessions ────────────────────────────
	//
	deps := handler.Deps{
		Projections:   projections,
		Backend:       client,
		Renderer:      renderer,
		Panels:        panels,
		Authorizer:    az,
		ForceHTTPS:    cfg.HTTP.ForceHTTPS,
		DevLogin:      cfg.Session.DevLogin,
		PreviewDelay:  cfg.Editor.PreviewDelay,
		SuccessWindow: cfg.Editor.SuccessWindow,
		Logger:        zl,
	}

	geo, err := requestinfo.OpenGeo(cfg.Geo.DBPath)
	if err != nil {
		return err
	}
	if geo != nil {
		defer geo.Close()
		deps.Geo = geo
	}

	deps.Hub = preview.NewHub(0, zl)
	deps.Hub.OriginPatterns = cfg.HTTP.WSOrigins

	deps.Editors = editor.NewPool(cfg.Editor.SessionIdle, zl)
	defer deps.Editors.Close()

	if deps.Sessions, err = session.New(cfg.Session.Secret, cfg.Session.TTL); err != nil {
		return err
	}
	deps.CSRF = csrf.New(cfg.Session.Secret)

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	return server.Run(ctx, server.New(cfg.HTTP.ListenAddr, handler.New(deps)), zl)
}
