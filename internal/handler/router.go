package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/essaycheck/internal/metrics"
	"github.com/hitoshi/essaycheck/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス
	Recorder metrics.Recorder
	Gatherer prometheus.Gatherer

	// ドメインサービス
	IdentityService IdentityServiceInterface
	EssayService    EssayServiceInterface
	HistoryService  HistoryServiceInterface

	// ヘルスチェック
	HealthChecker Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → (保護ルートのみ) Auth → RateLimit(General)
//
// 認証ルート（/api/signup等）、/health、/metricsはAuthミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.IdentityService, deps.Recorder)
	essayHandler := NewEssayHandler(deps.EssayService, deps.Recorder)
	historyHandler := NewHistoryHandler(deps.HistoryService, deps.Recorder)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
		r.Post("/verify-token", authHandler.VerifyToken)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Auth → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, deps.Recorder))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Post("/user/update", authHandler.UpdateUser)

			// POST /api/analyze-essay - LLM呼び出しを伴うため専用レート制限を追加
			r.With(deps.RateLimiter.AnalyzeMiddleware()).Post("/analyze-essay", essayHandler.AnalyzeEssay)

			r.Route("/history", func(r chi.Router) {
				r.Get("/", historyHandler.ListHistory)
				r.Delete("/", historyHandler.DeleteAllHistory)
				r.Delete("/{id}", historyHandler.DeleteHistoryItem)
			})
		})
	})

	return r
}
