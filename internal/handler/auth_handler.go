// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/essaycheck/internal/metrics"
	"github.com/hitoshi/essaycheck/internal/middleware"
	"github.com/hitoshi/essaycheck/internal/model"
)

// IdentityServiceInterface は認証ハンドラーが必要とするIDプロバイダーのインターフェース。
type IdentityServiceInterface interface {
	// SignUp は新規ユーザーを登録する。
	SignUp(ctx context.Context, email, password string) error
	// SignInWithPassword はメールアドレスとパスワードでサインインし、
	// アクセストークンとユーザー情報を返す。
	SignInWithPassword(ctx context.Context, email, password string) (string, *model.User, error)
	// GetUser はアクセストークンに紐づくユーザーを取得する。
	GetUser(ctx context.Context, accessToken string) (*model.User, error)
	// UpdateUserMetadata はユーザーのプロフィールを更新する。
	UpdateUserMetadata(ctx context.Context, userID string, profile model.Profile) error
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  IdentityServiceInterface
	recorder metrics.Recorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service IdentityServiceInterface, recorder metrics.Recorder) *AuthHandler {
	return &AuthHandler{
		service:  service,
		recorder: recorder,
	}
}

// credentialsRequest はサインアップ・サインインリクエストのボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// verifyTokenRequest はトークン検証リクエストのボディ。
type verifyTokenRequest struct {
	Token string `json:"token"`
}

// updateUserRequest はプロフィール更新リクエストのボディ。
type updateUserRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Signup は新規ユーザー登録を処理する。
// POST /api/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recorder.AuthAttempt("signup", "invalid_input")
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("Email and password are required"))
		return
	}

	if req.Email == "" || req.Password == "" {
		h.recorder.AuthAttempt("signup", "invalid_input")
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("Email and password are required"))
		return
	}

	if err := h.service.SignUp(r.Context(), req.Email, req.Password); err != nil {
		h.recorder.AuthAttempt("signup", "error")
		slog.Warn("signup failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		handleServiceError(w, err)
		return
	}

	h.recorder.AuthAttempt("signup", "success")
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully. Please check your email to verify.",
	})
}

// Signin はサインインを処理する。
// POST /api/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recorder.AuthAttempt("signin", "invalid_input")
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("Email and password are required"))
		return
	}

	if req.Email == "" || req.Password == "" {
		h.recorder.AuthAttempt("signin", "invalid_input")
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("Email and password are required"))
		return
	}

	token, user, err := h.service.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		// 理由を問わず単一のメッセージで拒否する（詳細はログのみ）
		h.recorder.AuthAttempt("signin", "failed")
		handleServiceError(w, err)
		return
	}

	h.recorder.AuthAttempt("signin", "success")
	h.recorder.ActiveUserSignIn()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user": map[string]any{
			"id":      user.ID,
			"email":   user.Email,
			"profile": user.Profile,
		},
	})
}

// verifyTokenResponse はトークン検証レスポンスのボディ。
// 失敗時はvalid:falseとエラーメッセージを返す。
type verifyTokenResponse struct {
	Valid bool           `json:"valid"`
	User  map[string]any `json:"user,omitempty"`
	Error string         `json:"error,omitempty"`
}

// VerifyToken はトークンの有効性を検証する。
// POST /api/verify-token
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, verifyTokenResponse{
			Valid: false,
			Error: "No token provided",
		})
		return
	}

	user, err := h.service.GetUser(r.Context(), req.Token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, verifyTokenResponse{
			Valid: false,
			Error: "Token is invalid or expired",
		})
		return
	}

	writeJSON(w, http.StatusOK, verifyTokenResponse{
		Valid: true,
		User: map[string]any{
			"id":            user.ID,
			"email":         user.Email,
			"created_at":    user.CreatedAt.Format(time.RFC3339),
			"user_metadata": user.Profile,
			"profile":       user.Profile,
		},
	})
}

// UpdateUser は認証済みユーザーのプロフィールを更新する。
// POST /api/user/update
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewMissingCredentialError())
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidInputError("Invalid request body"))
		return
	}

	profile := model.Profile{Name: req.Name, Phone: req.Phone}
	if err := h.service.UpdateUserMetadata(r.Context(), user.ID, profile); err != nil {
		slog.Error("failed to update user metadata",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    profile,
	})
}
