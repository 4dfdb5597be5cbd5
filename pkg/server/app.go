package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"DeskStream/internal/handler/api"
	"DeskStream/internal/usecase"
	"DeskStream/pkg/config"
	xhttp "DeskStream/pkg/http"
	applogger "DeskStream/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	feeds      *usecase.FeedSupervisor
	poller     *usecase.AccountPoller
	broker     *api.Broker
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. poller may be nil.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	feeds *usecase.FeedSupervisor,
	poller *usecase.AccountPoller,
	broker *api.Broker,
	httpServer *xhttp.Server,
) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		feeds:      feeds,
		poller:     poller,
		broker:     broker,
		httpServer: httpServer,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return a.RunUntil(func(ctx context.Context) {
		select {
		case <-sigCh:
			a.log.Info("shutdown signal received")
		case <-ctx.Done():
		}
	})
}

// RunUntil starts every component, blocks in wait, then shuts down.
func (a *App) RunUntil(wait func(ctx context.Context)) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.broker.Run(ctx)
	a.feeds.Start(ctx)

	if a.poller != nil {
		if err := a.poller.Start(a.cfg.Account.Schedule); err != nil {
			a.feeds.Stop()
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		a.shutdown(cancel)
		return err
	}

	wait(ctx)
	a.shutdown(cancel)
	return nil
}

// shutdown stops writers before readers: feeds and poller first so the
// store is quiet, then the push broker, then the HTTP surface.
func (a *App) shutdown(cancelBroker context.CancelFunc) {
	a.log.Info("shutting down...")

	a.feeds.Stop()
	if a.poller != nil {
		a.poller.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	// Long-lived push connections end when the broker closes their channels.
	cancelBroker()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
}
