// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層およびミドルウェアから利用する。
type MetricsCollector interface {
	RecordCatalogRead()
	RecordSeedFallback()
	RecordInterest()
	RecordListingRegistered()
	RecordLogoUpload(success bool)
	RecordHTTPRequest(method, path string, status int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	catalogReads      prometheus.Counter
	seedFallbacks     prometheus.Counter
	interestsRecorded prometheus.Counter
	listingsCreated   prometheus.Counter
	logoUploads       *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		catalogReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizmarket_catalog_reads_total",
			Help: "掲載一覧のディレクトリ読み取りの合計数",
		}),
		seedFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizmarket_seed_fallbacks_total",
			Help: "ディレクトリ障害によるシードカタログフォールバックの合計数",
		}),
		interestsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizmarket_interests_recorded_total",
			Help: "記録された購入意思表明の合計数",
		}),
		listingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bizmarket_listings_registered_total",
			Help: "登録された掲載の合計数",
		}),
		logoUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizmarket_logo_uploads_total",
			Help: "ロゴ保存の結果別の合計数",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizmarket_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.catalogReads,
		c.seedFallbacks,
		c.interestsRecorded,
		c.listingsCreated,
		c.logoUploads,
		c.httpStatus,
	)

	return c
}

// RecordCatalogRead はディレクトリ読み取りの実行を記録する。
func (c *Collector) RecordCatalogRead() {
	c.catalogReads.Inc()
}

// RecordSeedFallback はシードカタログへのフォールバックを記録する。
func (c *Collector) RecordSeedFallback() {
	c.seedFallbacks.Inc()
}

// RecordInterest は購入意思表明の記録を記録する。
func (c *Collector) RecordInterest() {
	c.interestsRecorded.Inc()
}

// RecordListingRegistered は掲載登録の成功を記録する。
func (c *Collector) RecordListingRegistered() {
	c.listingsCreated.Inc()
}

// RecordLogoUpload はロゴ保存の結果を記録する。
func (c *Collector) RecordLogoUpload(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.logoUploads.WithLabelValues(result).Inc()
}

// RecordHTTPRequest はHTTPレスポンスのステータスコードを記録する。
func (c *Collector) RecordHTTPRequest(method, path string, status int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
