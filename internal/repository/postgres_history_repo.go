package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/essaycheck/internal/model"
)

// PostgresHistoryRepo はPostgreSQLを使用した添削履歴リポジトリ。
type PostgresHistoryRepo struct {
	db *sql.DB
}

// NewPostgresHistoryRepo はPostgresHistoryRepoを生成する。
func NewPostgresHistoryRepo(db *sql.DB) *PostgresHistoryRepo {
	return &PostgresHistoryRepo{db: db}
}

// Append は新しい履歴エントリを追加する。
func (r *PostgresHistoryRepo) Append(ctx context.Context, userID, question, answer, result string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO history_entries (user_id, question, answer, result)
		 VALUES ($1, $2, $3, $4)`,
		userID, question, answer, result,
	)
	if err != nil {
		return fmt.Errorf("履歴エントリの作成に失敗しました: %w", err)
	}
	return nil
}

// ListByUser は指定ユーザーの履歴を作成日時の降順で取得する。
// user_idによる絞り込みをクエリ側で強制し、他ユーザーの行は返さない。
func (r *PostgresHistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, question, answer, result, created_at
		 FROM history_entries
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("履歴一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Question,
			&entry.Answer, &entry.Result, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("履歴行の読み取りに失敗しました: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("履歴一覧の走査に失敗しました: %w", err)
	}

	return entries, nil
}

// DeleteAllByUser は指定ユーザーの履歴をすべて削除する。
// 該当行が0件でもエラーとしない。
func (r *PostgresHistoryRepo) DeleteAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM history_entries WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("履歴の全削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteOne は指定ユーザーが所有する単一の履歴エントリを削除する。
// idとuser_idの両方で絞り込むため、他ユーザー所有の行は削除できず、
// その場合も存在しないIDと区別なくfalseを返す。
func (r *PostgresHistoryRepo) DeleteOne(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM history_entries WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("履歴エントリの削除に失敗しました: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除行数の取得に失敗しました: %w", err)
	}

	return affected > 0, nil
}

// compile-time interface check
var _ HistoryRepository = (*PostgresHistoryRepo)(nil)
