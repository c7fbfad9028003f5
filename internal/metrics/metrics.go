// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層・ワーカー・ミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordAggregationLatency(duration time.Duration)
	RecordCompletionToggle()
	RecordAttachmentCreated()
	RecordRowsMaterialized(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus         *prometheus.CounterVec
	aggregationLatency prometheus.Histogram
	completionToggles  prometheus.Counter
	attachments        prometheus.Counter
	rowsMaterialized   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calen_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		aggregationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "calen_aggregation_latency_seconds",
			Help:    "月間完了集計のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		completionToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calen_completion_toggles_total",
			Help: "完了状態更新の合計数",
		}),
		attachments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calen_routine_attachments_total",
			Help: "作成されたルーチン紐付けの合計数",
		}),
		rowsMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calen_completions_materialized_total",
			Help: "ワーカーが補完した完了レコードの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.aggregationLatency,
		c.completionToggles,
		c.attachments,
		c.rowsMaterialized,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAggregationLatency は月間完了集計のレイテンシを記録する。
func (c *Collector) RecordAggregationLatency(duration time.Duration) {
	c.aggregationLatency.Observe(duration.Seconds())
}

// RecordCompletionToggle は完了状態の更新を記録する。
func (c *Collector) RecordCompletionToggle() {
	c.completionToggles.Inc()
}

// RecordAttachmentCreated はルーチン紐付けの作成を記録する。
func (c *Collector) RecordAttachmentCreated() {
	c.attachments.Inc()
}

// RecordRowsMaterialized はワーカーが補完した完了レコード数を記録する。
func (c *Collector) RecordRowsMaterialized(count int64) {
	c.rowsMaterialized.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
