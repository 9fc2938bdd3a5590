// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/essaycheck/internal/metrics"
	"github.com/hitoshi/essaycheck/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// TokenVerifier はアクセストークンの検証に必要なインターフェース。
// supabase.Clientの部分集合として定義する。
type TokenVerifier interface {
	GetUser(ctx context.Context, accessToken string) (*model.User, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// トークンはリクエストごとにIDプロバイダーへ問い合わせて検証し、結果をキャッシュしない。
// 認証済みユーザーをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewAuthMiddleware(verifier TokenVerifier, recorder metrics.Recorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := r.URL.Path

			// 1. Authorizationヘッダーからトークンを抽出
			// ヘッダーが無い場合はプロバイダーへ問い合わせずに拒否する
			header := r.Header.Get("Authorization")
			if header == "" {
				recorder.AuthAttempt(endpoint, "invalid_input")
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewMissingCredentialError())
				return
			}

			token, err := parseBearerToken(header)
			if err != nil {
				recorder.AuthAttempt(endpoint, "invalid_input")
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewMalformedCredentialError())
				return
			}

			// 2. IDプロバイダーでトークンの有効性を検証
			user, err := verifier.GetUser(r.Context(), token)
			if err != nil {
				var apiErr *model.APIError
				if errors.As(err, &apiErr) {
					recorder.AuthAttempt(endpoint, "failed")
					WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
					return
				}

				slog.Error("token verification failed",
					slog.String("endpoint", endpoint),
					slog.String("error", err.Error()),
				)
				recorder.AuthAttempt(endpoint, "error")
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidCredentialError(""))
				return
			}

			recorder.AuthAttempt(endpoint, "success")

			// 3. 認証済みユーザーをコンテキストに注入
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseBearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// スキームとトークンが空白1つで区切られていない場合はエラーを返す。
func parseBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("authorization header is not in 'Bearer <token>' format")
	}
	return parts[1], nil
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil || user.ID == "" {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
