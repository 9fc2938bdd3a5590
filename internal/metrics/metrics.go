// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス記録のインターフェース。
// ハンドラーやサービス層はこのインターフェース経由で記録し、
// Prometheusへの依存を直接持たない。
type Recorder interface {
	// AuthAttempt は認証試行の結果を記録する。
	// statusは success / invalid_input / failed / error のいずれか。
	AuthAttempt(endpoint, status string)

	// EssayAnalysis は小論文解析リクエストの結果を記録する。
	EssayAnalysis(userID, status string)

	// EssayAnalysisDuration は小論文解析の所要時間を記録する。
	EssayAnalysisDuration(status string, duration time.Duration)

	// LLMCall はLLMプロバイダー呼び出しの結果を記録する。
	LLMCall(status string)

	// StoreOperation は履歴ストア操作の結果を記録する。
	StoreOperation(operation, status string)

	// ActiveUserSignIn はサインイン成功を記録する。
	ActiveUserSignIn()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authAttempts  *prometheus.CounterVec
	essayAnalyses *prometheus.CounterVec
	essayDuration *prometheus.HistogramVec
	llmCalls      *prometheus.CounterVec
	storeOps      *prometheus.CounterVec
	activeSignIns prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essaycheck_auth_attempts_total",
			Help: "エンドポイント・結果別の認証試行の合計数",
		}, []string{"endpoint", "status"}),
		essayAnalyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essaycheck_essay_analyses_total",
			Help: "結果別の小論文解析リクエストの合計数",
		}, []string{"status"}),
		essayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "essaycheck_essay_analysis_duration_seconds",
			Help:    "小論文解析の所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essaycheck_llm_calls_total",
			Help: "結果別のLLMプロバイダー呼び出しの合計数",
		}, []string{"status"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essaycheck_store_operations_total",
			Help: "操作・結果別の履歴ストア操作の合計数",
		}, []string{"operation", "status"}),
		activeSignIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "essaycheck_sign_ins_total",
			Help: "サインイン成功の合計数",
		}),
	}

	reg.MustRegister(
		c.authAttempts,
		c.essayAnalyses,
		c.essayDuration,
		c.llmCalls,
		c.storeOps,
		c.activeSignIns,
	)

	return c
}

// AuthAttempt は認証試行の結果を記録する。
func (c *Collector) AuthAttempt(endpoint, status string) {
	c.authAttempts.WithLabelValues(endpoint, status).Inc()
}

// EssayAnalysis は小論文解析リクエストの結果を記録する。
// userIDはカーディナリティが高すぎるためラベルには含めない。
func (c *Collector) EssayAnalysis(userID, status string) {
	c.essayAnalyses.WithLabelValues(status).Inc()
}

// EssayAnalysisDuration は小論文解析の所要時間を記録する。
func (c *Collector) EssayAnalysisDuration(status string, duration time.Duration) {
	c.essayDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// LLMCall はLLMプロバイダー呼び出しの結果を記録する。
func (c *Collector) LLMCall(status string) {
	c.llmCalls.WithLabelValues(status).Inc()
}

// StoreOperation は履歴ストア操作の結果を記録する。
func (c *Collector) StoreOperation(operation, status string) {
	c.storeOps.WithLabelValues(operation, status).Inc()
}

// ActiveUserSignIn はサインイン成功を記録する。
func (c *Collector) ActiveUserSignIn() {
	c.activeSignIns.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないRecorder。テストで使用する。
type Nop struct{}

func (Nop) AuthAttempt(endpoint, status string)                         {}
func (Nop) EssayAnalysis(userID, status string)                         {}
func (Nop) EssayAnalysisDuration(status string, duration time.Duration) {}
func (Nop) LLMCall(status string)                                       {}
func (Nop) StoreOperation(operation, status string)                     {}
func (Nop) ActiveUserSignIn()                                           {}

// compile-time interface checks
var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
