package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/providers/llm"
	"github.com/sandevgo/smartctx/internal/service/agent"
	"github.com/sandevgo/smartctx/internal/service/command"
	"github.com/sandevgo/smartctx/internal/service/notify"
	"github.com/sandevgo/smartctx/internal/service/session"
	"github.com/sandevgo/smartctx/internal/storage/file"
	redisstore "github.com/sandevgo/smartctx/internal/storage/redis"
	"github.com/sandevgo/smartctx/internal/storage/sqlite"
	"github.com/sandevgo/smartctx/internal/transport/api"
	"github.com/sandevgo/smartctx/internal/transport/telegram"
	"github.com/sandevgo/smartctx/pkg/log"
	"github.com/sandevgo/smartctx/pkg/retry"
	"github.com/sandevgo/smartctx/pkg/srv"
)

// app is the wired core shared by every command.
type app struct {
	cfg        *config.AppConfig
	chats      *sqlite.ChatRepo
	hub        *notify.Hub
	sessions   *session.Manager
	dispatcher *command.Dispatcher
	router     *command.Router
	agent      *agent.Agent

	// services holds cleanups and the session manager, in shutdown order.
	services []srv.Service
}

func newApp(ctx context.Context) (*app, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("init env: %w", err)
	}

	// 1. Configuration
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, err
	}
	providerCfg, err := config.LoadProviderConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: appCfg}

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	a.services = append(a.services, srv.NewCleanup(db.Close))
	a.chats = sqlite.NewChatRepo(db)

	var (
		rdb      *goredis.Client
		redisCfg *config.RedisConfig
	)
	if appCfg.EnableRedis {
		redisCfg, err = config.LoadRedisConfig()
		if err != nil {
			return nil, err
		}
		rdb, err = redisstore.NewClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.services = append(a.services, srv.NewCleanup(rdb.Close))
	}

	embStore := initEmbeddingStore(appCfg, db, rdb)

	// 3. Notifications
	a.hub = notify.NewHub()
	sinks := []notify.Sink{notify.LogSink{}, a.hub}
	if rdb != nil {
		sinks = append(sinks, notify.NewRedisSink(rdb, redisCfg.Channel))
	}
	notifier := notify.NewNotifier(sinks...)

	// 4. Provider
	provider, err := llm.NewProvider(ctx, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("init provider: %w", err)
	}

	// 5. Sessions and commands
	a.sessions = session.NewManager(ctx, appCfg, a.chats, embStore, provider, provider, notifier)
	a.services = append([]srv.Service{a.sessions}, a.services...)
	a.dispatcher = command.NewDispatcher(a.sessions)
	a.router = command.New(command.NewCommands(a.dispatcher))

	// 6. Agent
	a.agent = agent.NewAgent(
		appCfg,
		llm.NewRetryingCompleter(provider, retry.NewDefaultRetrier()),
		a.chats,
		a.sessions,
		agent.NewSysPrompt(appCfg),
	)

	return a, nil
}

func initEmbeddingStore(cfg *config.AppConfig, db *sql.DB, rdb *goredis.Client) core.EmbeddingStore {
	switch cfg.CacheBackend {
	case config.CacheBackendSQLite:
		return sqlite.NewEmbeddingRepo(db)
	case config.CacheBackendRedis:
		// Validate guarantees a client for this backend.
		return redisstore.NewEmbeddingStore(rdb)
	default:
		return file.NewEmbeddingStore(cfg.GetMemoryDir())
	}
}

// NewServices wires the app and the long running transports.
func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)

	a, err := newApp(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize")
	}

	transports, err := initTransports(ctx, a)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}

	return append(transports, a.services...)
}

func initTransports(ctx context.Context, a *app) ([]srv.Service, error) {
	var services []srv.Service

	if a.cfg.EnableHTTP {
		router := api.NewRouter(ctx, a.dispatcher, a.hub)
		services = append(services, api.NewServer(a.cfg.HTTPAddr, router))
	}

	if a.cfg.IsTelegramSelected() {
		tgCfg, err := config.LoadTelegramConfig()
		if err != nil {
			return nil, err
		}
		bot, err := telegram.NewBot(ctx, tgCfg, a.agent, a.router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
