package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	server "phantom-box/server"
	"phantom-box/server/internal/assets"
	"phantom-box/server/internal/emotion"
	"phantom-box/server/internal/proxy"
	"phantom-box/server/logging"
	"phantom-box/server/logging/sinks"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "optional config file (PHANTOM_* env vars override)")
	flag.Parse()

	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	tuning := server.DefaultTuning()
	if cfg.TuningPath != "" {
		tuning, err = server.LoadTuning(cfg.TuningPath)
		if err != nil {
			log.Fatalf("load tuning: %v", err)
		}
	}

	router := logging.NewRouter(nil, severityFromConfig(cfg.LogMinSeverity), []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout)},
	})
	defer router.Close(context.Background())

	if cfg.BackendBaseURL == "" {
		log.Printf("no backend base URL configured; label and asset lookups run in fallback mode")
	}

	gateway := proxy.NewGateway(cfg.StorageHost, router)
	arena := assets.NewArena()
	metadata := assets.NewMetadataClient(cfg.BackendBaseURL)
	resolver := assets.NewResolver(metadata, arena, cfg.StorageRoot, gateway.ProxiedURL)
	labels := emotion.NewClient(cfg.BackendBaseURL)

	hub := server.NewHub(tuning, labels, resolver, router)

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	go hub.RunProximity(stop)

	mux := http.NewServeMux()
	server.Routes(mux, hub, gateway, arena)

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		close(stop)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func severityFromConfig(name string) logging.Severity {
	switch name {
	case "debug":
		return logging.SeverityDebug
	case "warn":
		return logging.SeverityWarn
	case "error":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}
