// Package supabase はSupabase Auth（IDプロバイダー）との連携を提供する。
// サインアップ、サインイン、トークン検証、プロフィール更新の各操作を
// REST API呼び出しとしてラップする。
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/essaycheck/internal/model"
)

// Config はSupabase Authクライアントの設定。
type Config struct {
	// BaseURL はSupabaseプロジェクトのURL（例: https://xyz.supabase.co）。
	// テストではhttptestサーバーのURLに差し替える。
	BaseURL string
	// AnonKey は通常操作用のAPIキー。
	AnonKey string
	// ServiceRoleKey は管理操作用の昇格キー。未設定の場合、
	// プロフィール更新はServiceNotConfiguredエラーを返す。
	ServiceRoleKey string
}

// Client はSupabase Auth REST APIのクライアント。
// ステートレスであり、複数ゴルーチンから同時に使用できる。
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(config Config, httpClient *http.Client, logger *slog.Logger) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// --- プロバイダーのレスポンス型 ---

// sbUser はSupabase Authが返すユーザーオブジェクト。
type sbUser struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	CreatedAt    string      `json:"created_at"`
	UserMetadata *sbMetadata `json:"user_metadata"`
}

// sbMetadata はuser_metadataのプロフィールフィールド。
type sbMetadata struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// sbTokenResponse はパスワードグラントのレスポンス。
type sbTokenResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        *sbUser `json:"user"`
}

// sbErrorResponse はSupabase Authのエラーレスポンス。
// バージョンによりmsg/error_description/errorのいずれかにメッセージが入る。
type sbErrorResponse struct {
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	ErrorField       string `json:"error"`
	Message          string `json:"message"`
}

// message は存在するフィールドからエラーメッセージを取り出す。
func (e *sbErrorResponse) message() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Message != "":
		return e.Message
	default:
		return e.ErrorField
	}
}

// SignUp は新規ユーザーをプロバイダーに登録する。
// 成功時はnilを返す（作成済みマーカー）。プロバイダーが構造化エラーを
// 返した場合はそのメッセージを含むAPIErrorを、2xxだがユーザーIDを含まない
// 曖昧な応答の場合は汎用失敗のAPIErrorを返す。
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode signup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/auth/v1/signup", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create signup request: %w", err)
	}
	c.setAuthHeaders(req, c.config.AnonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("signup request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read signup response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp sbErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.message() != "" {
			return model.NewSignupRejectedError(errResp.message())
		}
		// 構造化されていないエラー応答は曖昧として扱う
		c.logger.Error("signup returned unstructured error",
			slog.Int("http_status", resp.StatusCode),
		)
		return model.NewSignupFailedError()
	}

	var user sbUser
	if err := json.Unmarshal(respBody, &user); err != nil || user.ID == "" {
		// 2xxだがユーザーIDが確認できない曖昧な応答
		c.logger.Error("signup returned ambiguous response",
			slog.Int("http_status", resp.StatusCode),
		)
		return model.NewSignupFailedError()
	}

	return nil
}

// SignInWithPassword はメールアドレスとパスワードでサインインする。
// 成功時はセッショントークンとユーザーを返す。失敗時は理由を問わず
// 単一のInvalidCredentialsエラーを返す（プロバイダー詳細は開示しない）。
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (string, *model.User, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	reqURL := c.config.BaseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", nil, model.NewInvalidCredentialsError()
	}
	c.setAuthHeaders(req, c.config.AnonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("signin request failed",
			slog.String("error", err.Error()),
		)
		return "", nil, model.NewInvalidCredentialsError()
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("signin rejected by provider",
			slog.Int("http_status", resp.StatusCode),
		)
		return "", nil, model.NewInvalidCredentialsError()
	}

	var tokenResp sbTokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return "", nil, model.NewInvalidCredentialsError()
	}
	if tokenResp.AccessToken == "" || tokenResp.User == nil || tokenResp.User.ID == "" {
		return "", nil, model.NewInvalidCredentialsError()
	}

	return tokenResp.AccessToken, toModelUser(tokenResp.User), nil
}

// GetUser はトークンに紐付くユーザーをプロバイダーに問い合わせる。
// トークンが無効・期限切れの場合はInvalidCredentialエラー
// （上流の詳細を含む）を、通信自体に失敗した場合は生のエラーを返す。
func (c *Client) GetUser(ctx context.Context, token string) (*model.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("apikey", c.config.AnonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewInvalidCredentialError(strings.TrimSpace(string(respBody)))
	}

	var user sbUser
	if err := json.Unmarshal(respBody, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	if user.ID == "" {
		return nil, model.NewInvalidCredentialError("no user bound to token")
	}

	return toModelUser(&user), nil
}

// UpdateUserMetadata は指定ユーザーのプロフィールメタデータを全置換で更新する。
// サービスロールキーが必要であり、未設定の場合はServiceNotConfiguredエラーを返す。
// マージではなく全置換のため、空フィールドは空値として書き込まれる。
func (c *Client) UpdateUserMetadata(ctx context.Context, userID string, profile model.Profile) error {
	if c.config.ServiceRoleKey == "" {
		return model.NewServiceNotConfiguredError()
	}

	body, err := json.Marshal(map[string]interface{}{
		"user_metadata": map[string]string{
			"name":  profile.Name,
			"phone": profile.Phone,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode update request: %w", err)
	}

	reqURL := c.config.BaseURL + "/auth/v1/admin/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create update request: %w", err)
	}
	c.setAuthHeaders(req, c.config.ServiceRoleKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read update response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("user update failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// setAuthHeaders はSupabase API共通の認証ヘッダーを設定する。
func (c *Client) setAuthHeaders(req *http.Request, key string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
}

// toModelUser はプロバイダーのユーザーオブジェクトをドメインモデルに変換する。
func toModelUser(u *sbUser) *model.User {
	user := &model.User{
		ID:    u.ID,
		Email: u.Email,
	}

	if u.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, u.CreatedAt); err == nil {
			user.CreatedAt = t
		}
	}

	if u.UserMetadata != nil {
		user.Profile = &model.Profile{
			Name:  u.UserMetadata.Name,
			Phone: u.UserMetadata.Phone,
		}
	}

	return user
}
