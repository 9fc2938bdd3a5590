package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/essaycheck/internal/metrics"
	"github.com/hitoshi/essaycheck/internal/middleware"
	"github.com/hitoshi/essaycheck/internal/model"
)

// EssayServiceInterface は小論文ハンドラーが必要とするサービスインターフェース。
type EssayServiceInterface interface {
	// Analyze は小論文を添削し、結果を返す。
	Analyze(ctx context.Context, user *model.User, question, answer string) (string, error)
}

// EssayHandler は小論文添削のHTTPハンドラー。
type EssayHandler struct {
	service  EssayServiceInterface
	recorder metrics.Recorder
}

// NewEssayHandler はEssayHandlerを生成する。
func NewEssayHandler(service EssayServiceInterface, recorder metrics.Recorder) *EssayHandler {
	return &EssayHandler{
		service:  service,
		recorder: recorder,
	}
}

// analyzeEssayRequest は添削リクエストのボディ。
// textが設問、answerが受験者の解答。
type analyzeEssayRequest struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

// analyzeEssayResponse は添削レスポンスのボディ。
// 入力をそのままエコーバックし、クライアント側での表示に使わせる。
type analyzeEssayResponse struct {
	Result string `json:"result"`
	Text   string `json:"text"`
	Answer string `json:"answer"`
	Status string `json:"status"`
}

// AnalyzeEssay は小論文の添削を処理する。
// POST /api/analyze-essay
func (h *EssayHandler) AnalyzeEssay(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewMissingCredentialError())
		return
	}

	var req analyzeEssayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recorder.EssayAnalysis(user.ID, "invalid_input")
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("Both question and answer are required"))
		return
	}

	if req.Text == "" || req.Answer == "" {
		h.recorder.EssayAnalysis(user.ID, "invalid_input")
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("Both question and answer are required"))
		return
	}

	result, err := h.service.Analyze(r.Context(), user, req.Text, req.Answer)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeEssayResponse{
		Result: result,
		Text:   req.Text,
		Answer: req.Answer,
		Status: "success",
	})
}
