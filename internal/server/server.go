// Package server exposes the customer chat API and the session-gated admin
// surface over HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/frontdeskhq/frontdesk/internal/catalog"
	"github.com/frontdeskhq/frontdesk/internal/config"
	"github.com/frontdeskhq/frontdesk/internal/conversation"
	"github.com/frontdeskhq/frontdesk/internal/enrich"
	"github.com/frontdeskhq/frontdesk/internal/gateway"
	"github.com/frontdeskhq/frontdesk/internal/notify"
	"github.com/frontdeskhq/frontdesk/internal/orchestrator"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the HTTP server.
type StartOpts struct {
	Config *config.Config
	DB     *gorm.DB
	Out    io.Writer
}

// Start wires the full service (store, gateway, enrichment, notifications,
// sessions) and serves HTTP. It blocks until ctx is cancelled, then shuts
// down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Config == nil {
		return fmt.Errorf("server: config is required")
	}
	if opts.DB == nil {
		return fmt.Errorf("server: db is required")
	}
	cfg := opts.Config

	store, err := conversation.NewStore(opts.DB)
	if err != nil {
		return err
	}

	gw, err := gateway.NewFromConfig(ctx, cfg.LLM, catalog.NewLookupTool(opts.DB))
	if err != nil {
		return err
	}

	dispatch := notify.NewDispatcher(cfg.Notify)
	runner, err := enrich.NewRunner(enrich.Opts{Store: store, Analyzer: gw, Dispatch: dispatch})
	if err != nil {
		return err
	}

	sessions := NewSessionStore(time.Duration(cfg.Admin.SessionTTLMinutes) * time.Minute)

	sweeper, err := enrich.NewSweeper(runner, cfg.Enrich.SweepSchedule, sessions.Purge)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	turns, err := orchestrator.New(orchestrator.Opts{
		Store:    store,
		Reply:    gw,
		Chat:     cfg.Chat,
		Schedule: runner.Schedule,
	})
	if err != nil {
		return err
	}

	router := NewRouter(Deps{
		DB:       opts.DB,
		Store:    store,
		Turns:    turns,
		Sessions: sessions,
		Admin:    cfg.Admin,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "%s listening on http://localhost:%d\n", cfg.AppName, cfg.Server.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	runner.Wait()
	return nil
}

// Deps carries everything the routes need. Tests build a Deps around an
// in-memory database and a mock chat model.
type Deps struct {
	DB       *gorm.DB
	Store    *conversation.Store
	Turns    *orchestrator.Orchestrator
	Sessions *SessionStore
	Admin    config.AdminConfig
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, d)
	return router
}
