package model

import "fmt"

// APIError はAPIの統一エラーフォーマットを表す。
// Messageはクライアントに返すメッセージ、Detailは上流エラーの詳細
// （診断用にレスポンスへ含める。内部ツール向けの意図的な選択）。
type APIError struct {
	Code    string
	Message string
	Detail  string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeMissingCredential    = "MISSING_CREDENTIAL"
	ErrCodeMalformedCredential  = "MALFORMED_CREDENTIAL"
	ErrCodeInvalidCredential    = "INVALID_CREDENTIAL"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeSignupRejected       = "SIGNUP_REJECTED"
	ErrCodeSignupFailed         = "SIGNUP_FAILED"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeUpstreamUnauthorized = "UPSTREAM_UNAUTHORIZED"
	ErrCodePaymentRequired      = "PAYMENT_REQUIRED"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeServiceNotConfigured = "SERVICE_NOT_CONFIGURED"
	ErrCodeUpstreamError        = "UPSTREAM_ERROR"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// NewInvalidInputError は入力バリデーションエラーを生成する。
func NewInvalidInputError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// NewMissingCredentialError はAuthorizationヘッダー欠落エラーを生成する。
func NewMissingCredentialError() *APIError {
	return &APIError{
		Code:    ErrCodeMissingCredential,
		Message: "Token is missing",
	}
}

// NewMalformedCredentialError はAuthorizationヘッダー形式不正エラーを生成する。
func NewMalformedCredentialError() *APIError {
	return &APIError{
		Code:    ErrCodeMalformedCredential,
		Message: "Token format invalid",
	}
}

// NewInvalidCredentialError はトークン検証失敗エラーを生成する。
// detailには上流プロバイダーのエラー詳細を含める。
func NewInvalidCredentialError(detail string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredential,
		Message: "Token is invalid or expired",
		Detail:  detail,
	}
}

// NewInvalidCredentialsError はサインイン失敗エラーを生成する。
// 理由を問わず単一のメッセージを返し、プロバイダー固有の詳細を漏らさない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredentials,
		Message: "Invalid email or password",
	}
}

// NewSignupRejectedError はプロバイダーがサインアップを拒否した場合のエラーを生成する。
// プロバイダーのメッセージをそのまま伝える（サインインとは異なり詳細を開示する）。
func NewSignupRejectedError(providerMessage string) *APIError {
	return &APIError{
		Code:    ErrCodeSignupRejected,
		Message: providerMessage,
	}
}

// NewSignupFailedError はプロバイダー応答が曖昧な場合の汎用失敗エラーを生成する。
func NewSignupFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeSignupFailed,
		Message: "Could not create user.",
	}
}

// NewRateLimitedError は評価APIのレート制限エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:    ErrCodeRateLimited,
		Message: "Rate limit exceeded.",
	}
}

// NewUpstreamUnauthorizedError は評価APIキー不正エラーを生成する。
func NewUpstreamUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeUpstreamUnauthorized,
		Message: "Invalid API key.",
	}
}

// NewPaymentRequiredError は評価APIの課金・クレジット関連エラーを生成する。
func NewPaymentRequiredError() *APIError {
	return &APIError{
		Code:    ErrCodePaymentRequired,
		Message: "Payment required or credits issue.",
	}
}

// NewHistoryItemNotFoundError は履歴エントリ未検出エラーを生成する。
// 他ユーザー所有の場合も同一のエラーを返し、行の存在を漏らさない。
func NewHistoryItemNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: "Item not found or you do not have permission to delete it",
	}
}

// NewServiceNotConfiguredError はサービスロールキー未設定エラーを生成する。
func NewServiceNotConfiguredError() *APIError {
	return &APIError{
		Code:    ErrCodeServiceNotConfigured,
		Message: "SUPABASE_SERVICE_ROLE_KEY is not configured",
	}
}

// NewUpstreamError は分類不能な上流エラーを生成する。
// 生のエラーメッセージをレスポンスに埋め込む。
func NewUpstreamError(raw string) *APIError {
	return &APIError{
		Code:    ErrCodeUpstreamError,
		Message: fmt.Sprintf("Internal server error: %s", raw),
	}
}

// NewInternalError は汎用内部エラーを生成する。
// アダプタ層の未分類例外をエラー文字列ごと伝える。
func NewInternalError(raw string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: fmt.Sprintf("Internal server error: %s", raw),
	}
}
