package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/UkralStul/social-feed-service/internal/api"
	"github.com/UkralStul/social-feed-service/internal/auth"
	"github.com/UkralStul/social-feed-service/internal/broadcast"
	"github.com/UkralStul/social-feed-service/internal/service"
	"github.com/UkralStul/social-feed-service/internal/storage"
	"github.com/UkralStul/social-feed-service/internal/storage/inmemory"
	"github.com/UkralStul/social-feed-service/internal/storage/jsonfile"
	"github.com/UkralStul/social-feed-service/internal/storage/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	defaultPort   = "8080"
	tokenTTL      = 24 * time.Hour
	pruneInterval = 24 * time.Hour
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	storageType := flag.String("storage", "in-memory", "Storage type (in-memory, postgres or jsonfile)")
	flag.Parse()

	var store storage.Storage
	var err error

	log.Printf("Starting server with %s storage", *storageType)
	switch *storageType {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL must be set for postgres storage")
		}
		store, err = postgres.New(dsn)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
	case "jsonfile":
		dir := os.Getenv("DATA_DIR")
		if dir == "" {
			dir = "./data"
		}
		store, err = jsonfile.New(dir)
		if err != nil {
			log.Fatalf("failed to open jsonfile storage: %v", err)
		}
	default:
		store = inmemory.New()
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	tokens := auth.NewManager(secret, tokenTTL)

	hub := broadcast.NewHub()
	defer hub.Close()

	var opts []service.Option
	// FEED_SEED фиксирует перемешивание ленты — только для отладки.
	if seedStr := os.Getenv("FEED_SEED"); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			log.Fatalf("invalid FEED_SEED: %v", err)
		}
		opts = append(opts, service.WithFeedSeed(seed))
	}
	svc := service.New(store, hub, opts...)

	// Суточная зачистка устаревших постов.
	go func() {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for range ticker.C {
			pruned, err := svc.PruneExpiredPosts(context.Background())
			if err != nil {
				log.Printf("prune sweep failed: %v", err)
				continue
			}
			log.Printf("prune sweep removed %d expired posts", pruned)
		}
	}()

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	api.New(svc, hub, tokens).Routes(router)

	log.Printf("listening on http://localhost:%s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}
