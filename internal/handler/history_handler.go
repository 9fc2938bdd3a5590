package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/essaycheck/internal/metrics"
	"github.com/hitoshi/essaycheck/internal/middleware"
	"github.com/hitoshi/essaycheck/internal/model"
)

// HistoryServiceInterface は履歴ハンドラーが必要とするサービスインターフェース。
// repository.HistoryRepositoryの部分集合として定義する。
type HistoryServiceInterface interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error)
	DeleteAllByUser(ctx context.Context, userID string) error
	DeleteOne(ctx context.Context, userID string, id int64) (bool, error)
}

// HistoryHandler は添削履歴のHTTPハンドラー。
type HistoryHandler struct {
	service  HistoryServiceInterface
	recorder metrics.Recorder
}

// NewHistoryHandler はHistoryHandlerを生成する。
func NewHistoryHandler(service HistoryServiceInterface, recorder metrics.Recorder) *HistoryHandler {
	return &HistoryHandler{
		service:  service,
		recorder: recorder,
	}
}

// ListHistory は認証済みユーザーの添削履歴を返す。
// 常に呼び出し元自身の行のみを、作成日時の降順で最大50件返す。
// GET /api/history
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewMissingCredentialError())
		return
	}

	entries, err := h.service.ListByUser(r.Context(), user.ID, model.HistoryListLimit)
	if err != nil {
		h.recorder.StoreOperation("select", "error")
		slog.Error("failed to list history",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		handleServiceError(w, err)
		return
	}
	h.recorder.StoreOperation("select", "success")

	// 履歴が空の場合もnullではなく空配列を返す
	if entries == nil {
		entries = []model.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"history": entries,
	})
}

// DeleteAllHistory は認証済みユーザーの履歴をすべて削除する。
// DELETE /api/history
func (h *HistoryHandler) DeleteAllHistory(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewMissingCredentialError())
		return
	}

	if err := h.service.DeleteAllByUser(r.Context(), user.ID); err != nil {
		h.recorder.StoreOperation("delete", "error")
		slog.Error("failed to delete history",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		handleServiceError(w, err)
		return
	}
	h.recorder.StoreOperation("delete", "success")

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "History deleted successfully",
	})
}

// DeleteHistoryItem は認証済みユーザーが所有する単一の履歴エントリを削除する。
// 存在しないID、または他ユーザー所有のIDはいずれも404として扱う。
// DELETE /api/history/{id}
func (h *HistoryHandler) DeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewMissingCredentialError())
		return
	}

	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("History item id must be an integer"))
		return
	}

	deleted, err := h.service.DeleteOne(r.Context(), user.ID, id)
	if err != nil {
		h.recorder.StoreOperation("delete", "error")
		slog.Error("failed to delete history item",
			slog.String("user_id", user.ID),
			slog.Int64("item_id", id),
			slog.String("error", err.Error()),
		)
		handleServiceError(w, err)
		return
	}

	if !deleted {
		h.recorder.StoreOperation("delete", "failed")
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewHistoryItemNotFoundError())
		return
	}
	h.recorder.StoreOperation("delete", "success")

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "History item deleted successfully",
	})
}
