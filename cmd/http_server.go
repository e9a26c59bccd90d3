package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/category"
	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/session"
	"github.com/frahmantamala/budget-story/internal/summary"
	"github.com/frahmantamala/budget-story/internal/transport"
	"github.com/frahmantamala/budget-story/internal/transport/rest"
	"github.com/frahmantamala/budget-story/internal/transport/swagger"
	"github.com/frahmantamala/budget-story/internal/trend"
	"github.com/frahmantamala/budget-story/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config  *internal.Config
	Storage *storageHandle
	Ledger  *ledgerStack
	Trend   *trend.Synthesizer
	Session *session.Controller
	Theme   string
	Router  *chi.Mux
	Logger  *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			_ = deps.Storage.Close()
			os.Exit(1)
		}
	}

	if err := deps.Storage.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}
	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)
	store := deps.Ledger.Store

	handlers := rest.Handlers{
		Category:  category.NewHandler(base, deps.Ledger.Catalog),
		Ledger:    ledger.NewHandler(base, store),
		Session:   session.NewHandler(base, deps.Session),
		Summary:   summary.NewHandler(base, store),
		Trend:     trend.NewHandler(base, deps.Trend),
		Dashboard: rest.NewDashboardHandler(base, store, deps.Trend, deps.Session, deps.Theme),
	}

	var (
		db     *sql.DB
		driver string
	)
	if deps.Storage.DB != nil {
		db = deps.Storage.DB.DB
		driver = deps.Config.Database.Driver
	}
	rest.RegisterAllRoutes(deps.Router, db, driver, handlers, deps.Config.Server.AllowedOrigins, deps.Logger)
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	if _, err := swagger.Load(ctx); err != nil {
		return nil, err
	}

	store, err := openStorage(ctx, config, lg)
	if err != nil {
		return nil, err
	}

	stack, err := newLedgerStack(config, store.KV, lg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	synth := trend.NewSynthesizer(trend.NewRandSource(config.Budget.TrendSeed), lg)
	synth.RegisterEventHandlers(stack.Bus)

	// load after subscribing so the first trend reflects the loaded ledger
	stack.Store.Load(ctx)

	return &Dependencies{
		Config:  config,
		Storage: store,
		Ledger:  stack,
		Trend:   synth,
		Session: session.NewController(stack.Store, lg),
		Theme:   stack.Snapshot.LoadTheme(ctx),
		Router:  chi.NewRouter(),
		Logger:  lg,
	}, nil
}
