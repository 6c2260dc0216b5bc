package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"rpgserver/internal/auth"
	"rpgserver/internal/config"
	"rpgserver/internal/handler"
	"rpgserver/internal/infrastructure/cache"
	"rpgserver/internal/infrastructure/database"
	"rpgserver/internal/infrastructure/mq"
	"rpgserver/internal/job"
	"rpgserver/internal/metrics"
	"rpgserver/internal/repository"
	"rpgserver/internal/service"
	"rpgserver/pkg/idgen"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务和后台任务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, *configFile)
		},
	}
}

func runServe(cmd *cobra.Command, configFile string) error {
	cfg, logger, db, err := bootstrap(configFile)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return oops.Code("MIGRATION_FAILED").Wrap(err)
	}

	// 创建上下文（用于优雅关闭）
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ids, err := idgen.New(1)
	if err != nil {
		return oops.Wrap(err)
	}

	throttle, closeRedis, err := newThrottle(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	tokens := auth.NewTokenService(&cfg.Auth)
	accounts := service.NewAccountService(db, tokens, auth.NewBcryptHasher(0), throttle, m, logger)
	svc := &handler.Services{
		Accounts:   accounts,
		Auth:       accounts,
		Characters: service.NewCharacterService(db, cfg, logger),
		Items:      service.NewItemService(db, logger),
		Inventory:  service.NewInventoryService(db, cfg, ids, m, logger),
		Equipment:  service.NewEquipmentService(db, m, logger),
		Roots:      service.NewRootService(db, cfg, ids, m, logger),
	}

	// 启动后台任务
	stopJobs, err := startJobs(ctx, db, cfg, m, logger)
	if err != nil {
		return err
	}
	defer stopJobs()

	router := handler.SetupRouter(svc, handler.RouterOptions{
		Mode:     cfg.Server.Mode,
		Cookie:   handler.CookieConfig{Secure: cfg.Auth.SecureCookie, RefreshTTL: cfg.Auth.RefreshTTL},
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务启动", slog.Int("port", cfg.Server.Port), slog.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 等待中断信号或监听失败
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return oops.Code("LISTEN_FAILED").Wrap(err)
		}
	}

	logger.Info("正在关闭服务...")

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务关闭异常", slog.Any("error", err))
	}

	logger.Info("服务已关闭")
	return nil
}

// newThrottle redis 未启用时不做登录失败限制
func newThrottle(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.LoginThrottle, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Warn("redis 未启用，登录失败限制关闭")
		return auth.NoopThrottle{}, func() {}, nil
	}
	client, err := cache.NewRedis(ctx, &cfg.Redis)
	if err != nil {
		return nil, nil, oops.Code("REDIS_CONNECT_FAILED").Wrap(err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("关闭 redis 失败", slog.Any("error", err))
		}
	}
	return auth.NewRedisThrottle(client, cfg.Auth.MaxLoginFailures, cfg.Auth.Lockout), closeFn, nil
}

// startJobs 按配置启动 token 清理任务和 outbox 投递任务（kafka 启用时）
func startJobs(ctx context.Context, db *gorm.DB, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (func(), error) {
	var (
		wg             sync.WaitGroup
		stops          []func()
		closePublisher func()
	)
	run := func(start func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start(ctx)
		}()
	}

	if cfg.Jobs.TokenSweepInterval > 0 {
		sweeper := job.NewTokenSweeper(repository.NewTokenRepository(db), cfg.Jobs.TokenSweepInterval, m, logger)
		run(sweeper.Start)
		stops = append(stops, sweeper.Stop)
	}

	if cfg.Kafka.Enabled {
		publisher, err := mq.NewKafkaPublisher(&cfg.Kafka)
		if err != nil {
			for _, stop := range stops {
				stop()
			}
			wg.Wait()
			return nil, oops.Code("KAFKA_CONNECT_FAILED").Wrap(err)
		}
		relay := job.NewOutboxRelay(repository.NewOutboxRepository(db), publisher, job.OutboxRelayOptions{
			Interval:  cfg.Jobs.OutboxInterval,
			BatchSize: cfg.Jobs.OutboxBatch,
			MaxRetry:  cfg.Jobs.MaxRetryCount,
		}, m, logger)
		run(relay.Start)
		stops = append(stops, relay.Stop)
		closePublisher = func() {
			if err := publisher.Close(); err != nil {
				logger.Error("关闭 Kafka 生产者失败", slog.Any("error", err))
			}
		}
	}

	// 先等任务退出，再关闭生产者
	return func() {
		for _, stop := range stops {
			stop()
		}
		wg.Wait()
		if closePublisher != nil {
			closePublisher()
		}
	}, nil
}
