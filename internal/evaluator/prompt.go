package evaluator

import (
	_ "embed"
	"log/slog"
	"os"
	"strings"
)

//go:embed role.txt
var embeddedRolePrompt string

// defaultRolePrompt はロールプロンプトが一切得られない場合のフォールバック。
const defaultRolePrompt = "אתה בודק פסיכומטרי מקצועי המתמחה בבדיקת חיבורים וניתוחם."

// LoadRolePrompt はロールプロンプトを読み込む。
// pathが指定されていればそのファイルを優先し、読み込みに失敗した場合は
// バンドルされたrole.txtにフォールバックする。それも空の場合は
// ハードコードされた既定文を返す。戻り値は前後の空白を除去済み。
func LoadRolePrompt(path string) string {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if prompt := strings.TrimSpace(string(data)); prompt != "" {
				return prompt
			}
		} else {
			slog.Warn("failed to read role prompt file, falling back to bundled prompt",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}

	if prompt := strings.TrimSpace(embeddedRolePrompt); prompt != "" {
		return prompt
	}

	return defaultRolePrompt
}
