package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/procura/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/procura/internal/apiclient"
	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/config"
	"github.com/MrJamesThe3rd/procura/internal/database"
	"github.com/MrJamesThe3rd/procura/internal/drafts"
	draftStore "github.com/MrJamesThe3rd/procura/internal/drafts/store"
	"github.com/MrJamesThe3rd/procura/internal/estimate"
	"github.com/MrJamesThe3rd/procura/internal/export"
	"github.com/MrJamesThe3rd/procura/internal/importer"
	"github.com/MrJamesThe3rd/procura/internal/material"
	"github.com/MrJamesThe3rd/procura/internal/notification"
	"github.com/MrJamesThe3rd/procura/internal/order"
	"github.com/MrJamesThe3rd/procura/internal/organization"
	"github.com/MrJamesThe3rd/procura/internal/project"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/session"
	"github.com/MrJamesThe3rd/procura/internal/tender"
	"github.com/MrJamesThe3rd/procura/internal/volume"
)

const startupTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "procura:", err)
		os.Exit(1)
	}
}

// loadSession reads the user from the API token. Without a token the client
// runs as a guest and the backend decides what is allowed.
func loadSession(token string, logger *slog.Logger, now time.Time) (session.Session, error) {
	sess, err := session.FromToken(token)
	if errors.Is(err, session.ErrNoToken) {
		logger.Info("no api token configured, continuing as guest")
		return session.Session{}, nil
	}

	if err != nil {
		return session.Session{}, err
	}

	if sess.Expired(now) {
		logger.Warn("api token has expired", "expires_at", sess.ExpiresAt)
	}

	return sess, nil
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	sess, err := loadSession(cfg.API.Token, logger, time.Now())
	if err != nil {
		return err
	}

	api, err := apiclient.New(cfg.API.URL,
		apiclient.WithToken(cfg.API.Token),
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := database.Open(ctx, cfg.Drafts.Driver, cfg.DraftsDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := draftStore.New(ctx, db, cfg.Drafts.Driver)
	if err != nil {
		return err
	}

	exportSvc, err := export.NewService(cfg.API.URL, cfg.API.Token, logger)
	if err != nil {
		return err
	}

	cache := querycache.NewStore(cfg.Cache.Size, cfg.Cache.TTL)

	deps := resource.Deps{
		API:    api,
		Loader: querycache.NewLoader(cache, logger),
		Role:   sess.Role,
		Logger: logger,
	}

	svc := &view.Services{
		Projects:      project.NewHandle(deps),
		Organizations: organization.NewHandle(deps),
		Materials:     material.NewHandle(deps),
		BOQs:          boq.NewHandle(deps),
		Estimates:     estimate.NewHandle(deps),
		Volumes:       volume.NewHandle(deps),
		Requests:      request.NewHandle(deps),
		Tenders:       tender.NewHandle(deps),
		Orders:        order.NewHandle(deps),
		Notifications: notification.NewHandle(deps),

		Drafts:   drafts.NewService(store),
		Importer: importer.NewService(),
		Export:   exportSvc,

		Session:        sess,
		Timeout:        cfg.API.Timeout,
		SearchDebounce: cfg.UI.SearchDebounce,
		NotifyInterval: cfg.UI.NotifyInterval,
		ExportDir:      cfg.UI.ExportDir,
	}

	logger.Info("starting", "api", cfg.API.URL, "user", sess.String(), "drafts", cfg.Drafts.Driver)

	app := view.NewApp(svc, logger, view.NewProjectsModel(svc))

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
