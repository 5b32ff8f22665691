package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"Agora/internal/api/handlers"
	"Agora/internal/api/handlers/common"
	"Agora/internal/api/middleware"
	"Agora/internal/api/routes"
	"Agora/internal/config"
	"Agora/internal/core/comments"
	"Agora/internal/core/feed"
	"Agora/internal/core/likes"
	"Agora/internal/core/posts"
	"Agora/internal/db/memory"
	mongoRepo "Agora/internal/db/mongo"
	postgresRepo "Agora/internal/db/postgres"
	"Agora/internal/metrics"
)

// repositories bundles the storage backend chosen at startup
type repositories struct {
	posts    posts.Repository
	comments comments.Repository
	likes    likes.Repository
	close    func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Database.Backend, err)
	}
	defer func() {
		if closeErr := repos.close(context.Background()); closeErr != nil {
			logger.Error("failed to close storage", "error", closeErr)
		}
	}()

	// Post like counts come from like records, not from a stored counter
	postService := posts.NewPostService(repos.posts, posts.Counters{
		Likes: func(ctx context.Context, postIDs []string) (map[string]int, error) {
			return repos.likes.CountByTargets(ctx, likes.TargetPost, postIDs)
		},
		Comments: repos.comments.CountByPosts,
	}, logger.With("component", "posts"))

	commentService := comments.NewCommentService(repos.comments, postService, logger.With("component", "comments"))

	targetValidator := likes.NewCompositeTargetValidator(postService.PostExists, commentService.CommentExists)
	likeService := likes.NewLikeService(repos.likes, targetValidator, logger.With("component", "likes"))

	feedService := feed.NewFeedService(
		postService,
		commentService,
		feed.NewCursorCodec(cfg.Feed.CursorSecret),
		logger.With("component", "feed"),
		feed.WithPageLimits(cfg.Feed.DefaultLimit, cfg.Feed.MaxLimit),
	)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	defer rateLimiter.Stop()
	r.Use(rateLimiter.Middleware)

	authMiddleware := middleware.NewJWTAuthMiddleware(cfg.Auth.JWTSecret)

	visibility := common.NewVisibilityGuard(postService, commentService)

	routes.RegisterPostRoutes(r, postService, authMiddleware, cfg.Posts.ExplicitOwnerCheck)
	routes.RegisterCommentRoutes(r, commentService, visibility, authMiddleware)
	routes.RegisterLikeRoutes(r, likeService, visibility, authMiddleware)
	routes.RegisterFeedRoutes(r, feedService, authMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"backend": cfg.Database.Backend,
		})
	})
	r.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Agora starting", "port", cfg.Server.Port, "backend", cfg.Database.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*repositories, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := postgresRepo.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		if err := postgresRepo.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("connected to PostgreSQL, migrations applied")
		return &repositories{
			posts:    postgresRepo.NewPostRepository(db),
			comments: postgresRepo.NewCommentRepository(db),
			likes:    postgresRepo.NewLikeRepository(db),
			close:    func(context.Context) error { return db.Close() },
		}, nil

	case config.BackendMongo:
		client, err := mongoRepo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB)
		if err := mongoRepo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Info("connected to MongoDB, indexes ensured", "database", cfg.MongoDB)
		return &repositories{
			posts:    mongoRepo.NewPostRepository(db),
			comments: mongoRepo.NewCommentRepository(db),
			likes:    mongoRepo.NewLikeRepository(db),
			close:    client.Disconnect,
		}, nil

	case config.BackendMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			posts:    store.Posts(),
			comments: store.Comments(),
			likes:    store.Likes(),
			close:    func(context.Context) error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Backend)
	}
}
