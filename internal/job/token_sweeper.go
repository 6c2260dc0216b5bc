package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rpgserver/internal/metrics"
)

// TokenStore 由 repository.TokenRepository 实现
type TokenStore interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TokenSweeper 定期删除过期的 refresh token
type TokenSweeper struct {
	store    TokenStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewTokenSweeper(store TokenStore, interval time.Duration, m *metrics.Metrics, logger *slog.Logger) *TokenSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenSweeper{
		store:    store,
		metrics:  m,
		logger:   logger.With(slog.String("job", "token_sweeper")),
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

func (s *TokenSweeper) Start(ctx context.Context) {
	s.logger.Info("过期 token 清理任务启动", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("收到停止信号，任务退出")
			return
		case <-s.stopCh:
			s.logger.Info("任务停止")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *TokenSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// RunOnce 删除一次过期 token，返回删除条数
func (s *TokenSweeper) RunOnce(ctx context.Context) int64 {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "清理过期 token 失败", slog.Any("error", err))
		return 0
	}
	if n > 0 {
		if s.metrics != nil {
			s.metrics.TokensSwept.Add(float64(n))
		}
		s.logger.InfoContext(ctx, "已清理过期 token", slog.Int64("count", n))
	}
	return n
}
