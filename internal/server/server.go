package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealsnap/backend/config"
	"github.com/mealsnap/backend/internal/api"
	"github.com/mealsnap/backend/internal/database"
	"github.com/mealsnap/backend/internal/middleware"
	"github.com/mealsnap/backend/internal/service"
	"github.com/mealsnap/backend/internal/store"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	cfg    *config.Config
}

// New builds the server: selects the storage backend, connects the optional
// Redis and S3 dependencies and wires the API.
func New(cfg *config.Config) (*Server, error) {
	entryStore, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	// Rate limiting rides on Redis; without it the API still serves, just
	// unthrottled.
	var limiter *middleware.RateLimiter
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Redis unavailable, analysis rate limiting disabled: %v", err)
	} else {
		limiter = middleware.NewAnalysisRateLimiter(redisClient)
	}

	var imageService *service.ImageService
	s3Config, err := config.NewS3Config(context.Background())
	if err != nil {
		log.Printf("Warning: S3 unavailable, photo uploads disabled: %v", err)
	} else {
		imageService = service.NewImageService(s3Config, service.NewImagePrepService())
	}

	router := gin.Default()
	router.Use(middleware.CORS())

	api.SetupAPI(router, api.Deps{
		Store:        entryStore,
		JWTSecret:    cfg.JWTSecret,
		ImageService: imageService,
		RateLimiter:  limiter,
	})

	return &Server{
		router: router,
		cfg:    cfg,
	}, nil
}

func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := database.NewGorm(cfg)
		if err != nil {
			return nil, err
		}
		gormStore := store.NewGormStore(db)
		if err := gormStore.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		return gormStore, nil
	case config.BackendRedis:
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client), nil
	case config.BackendMemory:
		log.Printf("Warning: using in-memory storage, data is lost on restart")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Start begins serving and blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
