// Package repository はデータ永続化層を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/essaycheck/internal/model"
)

// HistoryRepository は添削履歴の永続化インターフェース。
type HistoryRepository interface {
	// Append は新しい履歴エントリを追加する。IDはデータベース側で採番される。
	Append(ctx context.Context, userID, question, answer, result string) error

	// ListByUser は指定ユーザーの履歴を作成日時の降順で取得する。
	// 取得件数はlimitで制限される。他ユーザーの行は決して含まれない。
	ListByUser(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error)

	// DeleteAllByUser は指定ユーザーの履歴をすべて削除する。
	// 該当行が0件でも成功として扱う。
	DeleteAllByUser(ctx context.Context, userID string) error

	// DeleteOne は指定ユーザーが所有する単一の履歴エントリを削除する。
	// 該当行がない場合（存在しないID、または他ユーザー所有）はfalseを返す。
	DeleteOne(ctx context.Context, userID string, id int64) (bool, error)
}
