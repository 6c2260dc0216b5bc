// Package metrics Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rpg"

// 默认延迟分桶，单位秒
var httpLatencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// Metrics 所有指标集合，注册到构造时传入的 Registerer
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	GoldChanged     *prometheus.CounterVec
	ItemsPurchased  *prometheus.CounterVec
	ItemsSold       *prometheus.CounterVec
	EquipOperations *prometheus.CounterVec
	LoginAttempts   *prometheus.CounterVec
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
	TokensSwept     prometheus.Counter
}

// New 创建并注册指标，reg 为 nil 时使用独立的 Registry
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   httpLatencyBuckets,
		}, []string{"method", "path"}),
		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "正在处理的 HTTP 请求数",
		}),
		GoldChanged: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gold_changed_total",
			Help:      "按流水类型统计的金币变动绝对值",
		}, []string{"type"}),
		ItemsPurchased: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_purchased_total",
			Help:      "购买的物品数量",
		}, []string{"item"}),
		ItemsSold: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_sold_total",
			Help:      "出售的物品数量",
		}, []string{"item"}),
		EquipOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "equip_operations_total",
			Help:      "装备和卸下次数",
		}, []string{"op"}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "登录尝试次数",
		}, []string{"result"}),
		OutboxPublished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "成功投递到 Kafka 的事件数",
		}),
		OutboxFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_failures_total",
			Help:      "投递失败次数",
		}),
		TokensSwept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tokens_swept_total",
			Help:      "清理的过期 refresh token 数",
		}),
	}
}

// RecordGold 记录一次金币变动
func (m *Metrics) RecordGold(txType string, amount int64) {
	if m == nil {
		return
	}
	if amount < 0 {
		amount = -amount
	}
	m.GoldChanged.WithLabelValues(txType).Add(float64(amount))
}
