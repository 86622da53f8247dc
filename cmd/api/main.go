package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creativecube.dev/internal/analysis"
	"creativecube.dev/internal/auth"
	"creativecube.dev/internal/blob"
	"creativecube.dev/internal/blueprint"
	"creativecube.dev/internal/config"
	"creativecube.dev/internal/httpapi"
	"creativecube.dev/internal/obs"
	"creativecube.dev/internal/project"
	"creativecube.dev/internal/store/pg"
	"creativecube.dev/internal/stream"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("CC_BUILD_COMMIT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL, cfg.RefreshTTL)

	// Storage: Postgres when a DSN is configured, in-memory otherwise.
	var (
		identities auth.Store      = auth.NewInMemory()
		projects   project.Service = project.NewInMemory()
		blueprints blueprint.Store = blueprint.NewInMemory()
		probe      httpapi.ReadyProbe
		closeStore func() error
	)
	if cfg.DatabaseDSN != "" {
		store, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		identities = auth.NewPGStore(store.DB())
		projects = store.Projects()
		blueprints = store.Blueprints()
		probe = httpapi.ReadyProbe{DB: store.DB()}
		closeStore = store.Close
	} else {
		log.Println("no CC_PG_DSN set, using in-memory stores")
	}

	// Object storage: S3 when configured, in-memory otherwise.
	var blobs blob.Store = blob.NewInMemory()
	if cfg.S3Bucket != "" {
		s3store, err := blob.NewS3Store(context.Background(), blob.S3Config{
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			BaseURL:      cfg.S3BaseURL,
		})
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
		blobs = s3store
	} else {
		log.Println("no CC_S3_BUCKET set, using in-memory object store")
	}

	events := stream.New()
	sessions := auth.NewService(identities, tokens)
	blueprintSvc := blueprint.NewService(blueprints, projects, blobs, analysis.NewStub(), events)

	api := httpapi.New(httpapi.Options{
		ReadyProbe:   probe,
		Version:      version,
		Sessions:     sessions,
		Tokens:       tokens,
		Projects:     projects,
		Blueprints:   blueprintSvc,
		Stream:       events,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // SSE connections stay open
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting creativecube-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if closeStore != nil {
		_ = closeStore()
	}
	log.Println("Stopped")
}
