package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/essaycheck/internal/middleware"
	"github.com/hitoshi/essaycheck/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// APIErrorでない未分類のエラーは、生のエラー文字列を埋め込んだ500として返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, statusForAPIError(apiErr), apiErr)
		return
	}

	middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError(err.Error()))
}

// statusForAPIError はエラーコードをHTTPステータスコードに対応付ける。
func statusForAPIError(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidInput, model.ErrCodeSignupRejected:
		return http.StatusBadRequest
	case model.ErrCodeMissingCredential, model.ErrCodeMalformedCredential,
		model.ErrCodeInvalidCredential, model.ErrCodeInvalidCredentials,
		model.ErrCodeUpstreamUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodePaymentRequired:
		return http.StatusPaymentRequired
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		// SIGNUP_FAILED / SERVICE_NOT_CONFIGURED / UPSTREAM_ERROR / INTERNAL_ERROR
		return http.StatusInternalServerError
	}
}
