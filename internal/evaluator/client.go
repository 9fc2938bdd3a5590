// Package evaluator はチャット補完API（Groq、OpenAI互換）による
// 小論文評価を提供する。
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Config は評価クライアントの設定。
type Config struct {
	// APIKey は評価プロバイダーのAPIキー。TestMode時は未使用。
	APIKey string
	// BaseURL はOpenAI互換エンドポイントのベースURL。
	// テストではhttptestサーバーのURLに差し替える。
	BaseURL string
	// Model は使用するモデル名。
	Model string
	// TestMode が有効な場合、外部呼び出しを行わず決定的なテンプレートを返す。
	TestMode bool
	// HTTPClient は外部呼び出しに使用するクライアント（任意）。
	HTTPClient *http.Client
}

// Client は小論文評価のクライアント。
// ロールプロンプトはプロセス起動時に1回読み込まれ、以後不変。
type Client struct {
	config     Config
	rolePrompt string
	api        *openai.Client
	logger     *slog.Logger
}

// NewClient はClientの新しいインスタンスを生成する。
// rolePromptは全評価呼び出しに共通のシステム指示として使用される。
func NewClient(config Config, rolePrompt string, logger *slog.Logger) *Client {
	apiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		apiConfig.HTTPClient = config.HTTPClient
	}

	return &Client{
		config:     config,
		rolePrompt: rolePrompt,
		api:        openai.NewClientWithConfig(apiConfig),
		logger:     logger,
	}
}

// Evaluate は設問と解答を評価し、フィードバックテキストを返す。
// システムメッセージにロールプロンプト、ユーザーメッセージに設問と解答を
// 固定ラベル付きで原文のまま（翻訳・正規化なし）送信する。
// TestMode時は外部呼び出しを行わず、設問と解答をそのまま埋め込んだ
// 決定的なテンプレート文字列を返す。
func (c *Client) Evaluate(ctx context.Context, question, answer string) (string, error) {
	if c.config.TestMode {
		return fmt.Sprintf("[TEST_MODE] תשובה לשאלה: %s\nתשובה: %s", question, answer), nil
	}

	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.rolePrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("שאלה: %s\nתשובה: %s", question, answer),
			},
		},
		Stream: false,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("chat completion request failed",
			slog.String("model", c.config.Model),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	return resp.Choices[0].Message.Content, nil
}
