// Package essay は小論文の添削処理を提供する。
package essay

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/essaycheck/internal/metrics"
	"github.com/hitoshi/essaycheck/internal/model"
)

// Evaluator は小論文の添削に必要なインターフェース。
// evaluator.Clientの部分集合として定義する。
type Evaluator interface {
	Evaluate(ctx context.Context, question, answer string) (string, error)
}

// HistoryAppender は添削結果の履歴保存に必要なインターフェース。
// repository.HistoryRepositoryの部分集合として定義する。
type HistoryAppender interface {
	Append(ctx context.Context, userID, question, answer, result string) error
}

// Service は小論文の添削とその履歴保存を調整する。
type Service struct {
	evaluator Evaluator
	history   HistoryAppender
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(evaluator Evaluator, history HistoryAppender, recorder metrics.Recorder, logger *slog.Logger) *Service {
	return &Service{
		evaluator: evaluator,
		history:   history,
		recorder:  recorder,
		logger:    logger,
	}
}

// Analyze は小論文を添削し、結果を履歴に保存して返す。
// 添削の失敗はAPIErrorに分類して返す。
// 履歴保存の失敗は添削結果を失わせないため、ログに記録して握りつぶす。
func (s *Service) Analyze(ctx context.Context, user *model.User, question, answer string) (string, error) {
	start := time.Now()

	result, err := s.evaluator.Evaluate(ctx, question, answer)
	if err != nil {
		s.recorder.LLMCall("error")
		s.recorder.EssayAnalysis(user.ID, "error")
		s.recorder.EssayAnalysisDuration("error", time.Since(start))

		apiErr := classifyUpstreamError(err)
		s.logger.Error("essay evaluation failed",
			slog.String("user_id", user.ID),
			slog.String("code", apiErr.Code),
			slog.String("error", err.Error()),
		)
		return "", apiErr
	}
	s.recorder.LLMCall("success")

	// 履歴保存はベストエフォート。失敗しても添削結果は返す。
	if err := s.history.Append(ctx, user.ID, question, answer, result); err != nil {
		s.recorder.StoreOperation("append", "error")
		s.logger.Warn("failed to append history entry",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	} else {
		s.recorder.StoreOperation("append", "success")
	}

	s.recorder.EssayAnalysis(user.ID, "success")
	s.recorder.EssayAnalysisDuration("success", time.Since(start))

	return result, nil
}

// classifyUpstreamError は評価APIの生エラー文字列をキーワードで分類する。
// 判定は先頭から順に行い、複数のキーワードに一致する場合は先の分類が優先される。
func classifyUpstreamError(err error) *model.APIError {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "rate") || strings.Contains(msg, "429"):
		return model.NewRateLimitedError()
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized"):
		return model.NewUpstreamUnauthorizedError()
	case strings.Contains(msg, "402") || strings.Contains(msg, "payment") || strings.Contains(msg, "credit"):
		return model.NewPaymentRequiredError()
	default:
		return model.NewUpstreamError(err.Error())
	}
}
