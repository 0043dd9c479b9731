package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"hepevd/internal/config"
	"hepevd/internal/handler"
	"hepevd/internal/hub"
	"hepevd/internal/metrics"
	"hepevd/internal/repository/sqlite"
	"hepevd/internal/service"
	"hepevd/internal/view"
	"hepevd/internal/watcher"
)

//go:embed web/*
var webFS embed.FS

func main() {
	// Command line flags override the config file
	configPath := flag.String("config", "", "Config file path (default: search $HEPEVD_CONFIG, ./hepevd.yaml, ~/.config/hepevd)")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	eventFile := flag.String("event", "", "Event file to load at startup (JSON or YAML)")
	watch := flag.Bool("watch", false, "Reload the event file when it changes")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting hepevd server...")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.Addr = *addr
		case "db":
			cfg.Database.Path = *dbPath
		case "event":
			cfg.Event.File = *eventFile
		case "watch":
			cfg.Event.Watch = *watch
		}
	})
	log.Printf("Config:\n%s", cfg.Summary())

	if err := run(cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg   *config.Config
		found string
		err   error
	)
	if path != "" {
		cfg, found, err = config.LoadFromPath(path)
	} else {
		cfg, found, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if found != "" {
		log.Printf("Config loaded from %s", found)
	} else {
		log.Println("No config file found, using defaults")
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	m := metrics.New()

	// Initialize event bus and SSE hub
	eventBus := service.NewEventBus()
	sseHub := hub.New()
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)

	eventSvc := service.NewEventService(repo, eventBus)
	eventSvc.SetObserver(m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	// The event file takes precedence over the last stored event
	if cfg.Event.File != "" {
		if _, err := eventSvc.LoadFile(ctx, cfg.Event.File); err != nil {
			return err
		}
	} else if err := eventSvc.Restore(ctx); err != nil {
		return err
	}

	// Initialize HTTP handlers
	eventHandler := handler.NewEventHandler(eventSvc)
	sessionHandler := handler.NewSessionHandler(eventSvc, view.Options{
		Styles:     cfg.Views.Styles(),
		Precedence: cfg.Precedence(),
		Observer:   m,
	})
	sessionHandler.SetObserver(m)

	// Setup routes
	mux := http.NewServeMux()

	// Current event, as the viewer fetches it
	mux.HandleFunc("GET /hits", eventHandler.GetHits)
	mux.HandleFunc("GET /mcHits", eventHandler.GetMCHits)
	mux.HandleFunc("GET /markers", eventHandler.GetMarkers)
	mux.HandleFunc("GET /particles", eventHandler.GetParticles)
	mux.HandleFunc("GET /geometry", eventHandler.GetGeometry)
	mux.HandleFunc("GET /api/current", eventHandler.GetCurrent)

	// Event library
	mux.HandleFunc("GET /api/events", eventHandler.ListEvents)
	mux.HandleFunc("POST /api/events", eventHandler.CreateEvent)
	mux.HandleFunc("GET /api/events/{id}", eventHandler.GetEvent)
	mux.HandleFunc("DELETE /api/events/{id}", eventHandler.DeleteEvent)
	mux.HandleFunc("POST /api/events/{id}/select", eventHandler.SelectEvent)
	mux.HandleFunc("GET /api/export/{format}", eventHandler.Export)

	// Interactive sessions and notifications
	mux.Handle("GET /ws", sessionHandler)
	mux.Handle("GET /events", sseHub)
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", m.Handler())
	}
	mux.HandleFunc("GET /quit", handler.Quit(quit))

	// Static files from embedded filesystem
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return err
	}
	mux.Handle("/", http.FileServer(http.FS(webContent)))

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sseHub.Run(ctx)
	})

	// Connect event bus to SSE hub
	g.Go(func() error {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(event)
			case <-ctx.Done():
				return nil
			}
		}
	})

	if cfg.Event.File != "" && cfg.Event.Watch {
		w := watcher.New(cfg.Event.File, func(ctx context.Context, path string) error {
			_, err := eventSvc.LoadFile(ctx, path)
			return err
		}).WithDebounce(cfg.Event.Debounce.Duration())
		g.Go(func() error {
			return w.Watch(ctx)
		})
	}

	g.Go(func() error {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
