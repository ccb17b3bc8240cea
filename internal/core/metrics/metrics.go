package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics Prometheus 指標
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	recommendationsTotal *prometheus.CounterVec
	matchesReturned      prometheus.Histogram
	generationsTotal     *prometheus.CounterVec
	generationDuration   *prometheus.HistogramVec
	detailLookupsTotal   *prometheus.CounterVec

	corpusReloadsTotal *prometheus.CounterVec
	corpusRecipes      prometheus.Gauge
	corpusLoadedAt     prometheus.Gauge
}

// 推薦結果種類
const (
	OutcomeMatched          = "matched"
	OutcomeGenerated        = "generated"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeEmptyInput       = "empty_input"
)

// New 在指定的 registerer 註冊所有指標（測試可用獨立的 registry）
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		recommendationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fridge_recommendations_total",
				Help: "Recommendation requests by outcome",
			},
			[]string{"outcome"},
		),
		matchesReturned: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fridge_matches_returned",
				Help:    "Number of fully coverable recipes per request",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
			},
		),
		generationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fridge_generations_total",
				Help: "Generative fallback calls by provider and result",
			},
			[]string{"provider", "result"},
		),
		generationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fridge_generation_duration_seconds",
				Help:    "Generative fallback latency in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"provider"},
		),
		detailLookupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fridge_recipe_detail_lookups_total",
				Help: "Recipe detail lookups by source",
			},
			[]string{"source"},
		),
		corpusReloadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fridge_corpus_reloads_total",
				Help: "Corpus load attempts by result",
			},
			[]string{"result"},
		),
		corpusRecipes: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "fridge_corpus_recipes",
				Help: "Number of recipes in the live corpus",
			},
		),
		corpusLoadedAt: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "fridge_corpus_loaded_timestamp_seconds",
				Help: "Unix time of the last successful corpus load",
			},
		),
	}
}

// ObserveHTTP 記錄 HTTP 請求
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveRecommendation 記錄一次推薦的結果
func (m *Metrics) ObserveRecommendation(outcome string, covered int) {
	if m == nil {
		return
	}
	m.recommendationsTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeEmptyInput {
		m.matchesReturned.Observe(float64(covered))
	}
}

// ObserveGeneration 記錄生成式備援呼叫
func (m *Metrics) ObserveGeneration(provider, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.generationsTotal.WithLabelValues(provider, result).Inc()
	m.generationDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveDetailLookup 記錄詳細頁查詢來源（corpus、generated、not_found）
func (m *Metrics) ObserveDetailLookup(source string) {
	if m == nil {
		return
	}
	m.detailLookupsTotal.WithLabelValues(source).Inc()
}

// ObserveCorpusLoad 記錄語料庫載入結果
func (m *Metrics) ObserveCorpusLoad(recipes int, loadedAt time.Time, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.corpusReloadsTotal.WithLabelValues("failure").Inc()
		return
	}
	m.corpusReloadsTotal.WithLabelValues("success").Inc()
	m.corpusRecipes.Set(float64(recipes))
	m.corpusLoadedAt.Set(float64(loadedAt.Unix()))
}
