package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rpgserver/internal/infrastructure/mq"
	"rpgserver/internal/metrics"
	"rpgserver/internal/model"
)

// OutboxStore OutboxRelay 需要的持久化操作，由 repository.OutboxRepository 实现
type OutboxStore interface {
	GetPendingMessages(ctx context.Context, limit int) ([]*model.OutboxMessage, error)
	MarkAsSent(ctx context.Context, id int64) error
	IncrementRetryCount(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64) error
}

// OutboxRelay 轮询 outbox 表，把待发送的游戏事件投递到消息队列
type OutboxRelay struct {
	store     OutboxStore
	publisher mq.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	maxRetry  int
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// OutboxRelayOptions 轮询参数，零值使用默认值
type OutboxRelayOptions struct {
	Interval  time.Duration
	BatchSize int
	MaxRetry  int
}

func NewOutboxRelay(store OutboxStore, publisher mq.Publisher, opts OutboxRelayOptions, m *metrics.Metrics, logger *slog.Logger) *OutboxRelay {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxRetry <= 0 {
		opts.MaxRetry = 5
	}
	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With(slog.String("job", "outbox_relay")),
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		maxRetry:  opts.MaxRetry,
		stopCh:    make(chan struct{}),
	}
}

// Start 阻塞运行，直到 ctx 取消或调用 Stop
func (r *OutboxRelay) Start(ctx context.Context) {
	r.logger.Info("消息投递任务启动", slog.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("收到停止信号，任务退出")
			return
		case <-r.stopCh:
			r.logger.Info("任务停止")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

func (r *OutboxRelay) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// RunOnce 处理一批待发送消息，返回发送成功的条数
func (r *OutboxRelay) RunOnce(ctx context.Context) int {
	messages, err := r.store.GetPendingMessages(ctx, r.batchSize)
	if err != nil {
		r.logger.ErrorContext(ctx, "查询待发送消息失败", slog.Any("error", err))
		return 0
	}

	sent := 0
	for _, msg := range messages {
		if ctx.Err() != nil {
			break
		}
		if r.send(ctx, msg) {
			sent++
		}
	}
	return sent
}

func (r *OutboxRelay) send(ctx context.Context, msg *model.OutboxMessage) bool {
	err := r.publisher.Publish(ctx, msg.Topic, msg.MessageKey, msg.Payload)
	if err == nil {
		if err := r.store.MarkAsSent(ctx, msg.ID); err != nil {
			// 消息已经发出，下一轮会重复投递，消费方按 key 去重
			r.logger.ErrorContext(ctx, "更新消息状态失败", slog.Int64("id", msg.ID), slog.Any("error", err))
			return false
		}
		if r.metrics != nil {
			r.metrics.OutboxPublished.Inc()
		}
		r.logger.DebugContext(ctx, "消息发送成功",
			slog.Int64("id", msg.ID), slog.String("topic", msg.Topic), slog.String("key", msg.MessageKey))
		return true
	}

	if r.metrics != nil {
		r.metrics.OutboxFailures.Inc()
	}
	r.logger.WarnContext(ctx, "消息发送失败",
		slog.Int64("id", msg.ID), slog.String("event_type", msg.EventType),
		slog.Int("retry_count", msg.RetryCount), slog.Any("error", err))

	// 最后一次失败直接标记为 FAILED，MarkAsFailed 会同时累加重试次数
	if msg.RetryCount+1 >= r.maxRetry {
		if err := r.store.MarkAsFailed(ctx, msg.ID); err != nil {
			r.logger.ErrorContext(ctx, "标记消息失败状态失败", slog.Int64("id", msg.ID), slog.Any("error", err))
		} else {
			r.logger.WarnContext(ctx, "消息超过最大重试次数，标记为失败", slog.Int64("id", msg.ID))
		}
		return false
	}
	if err := r.store.IncrementRetryCount(ctx, msg.ID); err != nil {
		r.logger.ErrorContext(ctx, "增加重试次数失败", slog.Int64("id", msg.ID), slog.Any("error", err))
	}
	return false
}
