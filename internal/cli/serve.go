package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/keyrelay/internal/api"
	"github.com/ashureev/keyrelay/internal/config"
	"github.com/ashureev/keyrelay/internal/middleware"
	"github.com/ashureev/keyrelay/internal/relay"
	"github.com/ashureev/keyrelay/internal/store"
	"github.com/ashureev/keyrelay/internal/suggest"
	"github.com/ashureev/keyrelay/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port    string
		envFile string
		lf      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loadEnvFile(envFile)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("layout") {
				cfg.Layout = lf.name
			}
			if flags.Changed("layout-file") {
				cfg.LayoutFile = lf.file
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: cfg.LogLevel,
			}))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	lf.bind(cmd)

	return cmd
}

func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Info("No .env file found, using environment variables", "path", path)
	}
}

// server bundles the long-lived pieces runServer starts and stops.
type server struct {
	hub      *relay.Hub
	repo     store.Repository
	recorder *store.Recorder
	router   chi.Router
}

func newServer(cfg *config.Config, logger *slog.Logger) (*server, error) {
	geometry, err := (&layoutFlags{name: cfg.Layout, file: cfg.LayoutFile}).resolve()
	if err != nil {
		return nil, err
	}

	var index *suggest.Index
	if cfg.SuggestionsPath != "" {
		index, err = suggest.Load(cfg.SuggestionsPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Suggestions loaded", "path", cfg.SuggestionsPath, "titles", index.Len())
	}

	repo, err := store.Open(store.Options{
		Backend: cfg.SessionLog.Backend,
		CSVPath: cfg.SessionLog.CSVPath,
		DBPath:  cfg.SessionLog.DBPath,
	})
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	if err := repo.Ping(context.Background()); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("session log health check: %w", err)
	}
	logger.Info("Session log ready", "backend", cfg.SessionLog.Backend)

	recorder := store.NewRecorder(repo, cfg.SessionLog.QueueSize, cfg.SessionLog.WriteTimeout, logger)

	advertise := cfg.AdvertiseAddr
	if advertise == "" {
		advertise = relay.DetectAddress()
	}
	hub := relay.NewHub(relay.Options{
		Recorder:      recorder,
		AdvertiseAddr: advertise,
		Logger:        logger,
	})

	wsHandler := relay.NewWebSocketHandler(hub, relay.HandlerOptions{
		AllowedOrigin: cfg.AllowedOrigin,
		SendQueueSize: cfg.Peer.SendQueueSize,
		WriteTimeout:  cfg.Peer.WriteTimeout,
		Logger:        logger,
	})
	deps := api.Deps{
		Repo:       repo,
		State:      hub,
		Stats:      recorder,
		Geometry:   geometry,
		Index:      index,
		StripWidth: cfg.StripWidth,
	}
	if lister, ok := store.AsLister(repo); ok {
		deps.Sessions = lister
	}
	apiHandler := api.NewHandler(deps)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{cfg.AllowedOrigin}))

	apiHandler.RegisterRoutes(r)
	r.Get("/ws", wsHandler.ServeHTTP)
	r.Handle("/*", web.SPAHandler())

	logger.Info("Relay configured",
		"layout", geometry.Name(),
		"advertise_addr", advertise,
		"allowed_origin", cfg.AllowedOrigin,
	)

	return &server{hub: hub, repo: repo, recorder: recorder, router: r}, nil
}

func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	s, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.repo.Close(); closeErr != nil {
			logger.Error("Failed to close session log", "error", closeErr)
		}
	}()

	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		s.hub.Run(hubCtx)
		close(hubDone)
	}()

	// Websocket handlers run on hijacked connections that Shutdown does not
	// track; deriving request contexts from connCtx lets us end them.
	connCtx, closeConns := context.WithCancel(context.Background())
	defer closeConns()

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
		BaseContext: func(net.Listener) context.Context { return connCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	closeConns()
	stopHub()
	<-hubDone

	if err := s.recorder.Close(shutdownCtx); err != nil {
		logger.Error("Session log recorder did not drain", "error", err, "stats", s.recorder.Stats())
	}

	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	logger.Info("Server stopped successfully")
	return nil
}
