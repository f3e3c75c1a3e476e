package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
	"quizmaster/internal/infra/apiclient"
	"quizmaster/internal/infra/memory"
	pgloader "quizmaster/internal/infra/postgres"
	infraredis "quizmaster/internal/infra/redis"
	"quizmaster/internal/logging"
)

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

func newAPIClient(cfg config.Config, logger *slog.Logger) *apiclient.Client {
	httpClient := &http.Client{Timeout: config.TTLDuration(cfg.API.Timeout, 10*time.Second)}
	creds := apiclient.NewCredentials(cfg.API.AccessToken, cfg.API.RefreshToken)
	return apiclient.NewClient(cfg.API.BaseURL, httpClient, creds, logger)
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// stack is the wired repository layer shared by the server and the terminal player.
type stack struct {
	quizzes  app.QuizRepository
	sessions app.SessionRepository
	closers  []func()
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// newStack picks the quiz source (Postgres mirror when configured, the quiz
// API otherwise) and the cache (Redis when configured, memory otherwise).
func newStack(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stack, error) {
	s := &stack{}

	var loader memory.QuizLoader = newAPIClient(cfg, logger)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		loader = pgloader.NewQuizLoader(pool)
		logger.Info("loading quizzes from postgres mirror")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		s.closers = append(s.closers, func() { _ = redisClient.Close() })
		s.quizzes = infraredis.NewQuizRepository(redisClient, loader, quizTTL, logger)
		s.sessions = infraredis.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
		logger.Info("caching quizzes in redis", "addr", cfg.Redis.Addr)
	} else {
		s.quizzes = memory.NewQuizRepository(loader, quizTTL)
		s.sessions = memory.NewSessionStore()
	}
	return s, nil
}
