//	@title			Spotify Clone API
//	@version		1.0
//	@description	Music-streaming backend: song catalog, uploads, likes.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/ajay-develops/spotify-clone/internal/auth"
	"github.com/ajay-develops/spotify-clone/internal/config"
	"github.com/ajay-develops/spotify-clone/internal/db"
	"github.com/ajay-develops/spotify-clone/internal/identity"
	appMiddleware "github.com/ajay-develops/spotify-clone/internal/middleware"
	"github.com/ajay-develops/spotify-clone/internal/song"
	"github.com/ajay-develops/spotify-clone/internal/storage"

	_ "github.com/ajay-develops/spotify-clone/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	// One storage instance per namespace: songs (audio) and images.
	audioStore, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageSongsBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("audio storage init failed: %v", err)
	}
	imageStore, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageImagesBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("image storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	songRepo := song.NewRepository(pool)
	songSvc := song.NewService(songRepo, audioStore, imageStore, identity.ContextVerifier{})
	songHandler := song.NewHandler(songSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/anonymous", authHandler.Anonymous)
		})

		// Public catalog reads
		r.Get("/songs", songHandler.List)
		r.Get("/songs/{id}", songHandler.Get)

		// Protected mutations and personal lists
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
			r.Post("/songs", songHandler.Upload)
			r.Delete("/songs/{id}", songHandler.Delete)
			r.Get("/songs/{id}/like", songHandler.IsLiked)
			r.Put("/songs/{id}/like", songHandler.Like)
			r.Delete("/songs/{id}/like", songHandler.Unlike)
			r.Get("/me/likes", songHandler.ListLiked)
			r.Get("/me/songs", songHandler.ListMine)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second, // uploads up to 55 MiB
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
