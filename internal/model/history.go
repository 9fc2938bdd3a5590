package model

import "time"

// HistoryListLimit は履歴取得の最大件数。
const HistoryListLimit = 50

// HistoryEntry は1回の添削結果（設問・解答・フィードバック）を表す。
// IDはデータベース側で採番される連番。
type HistoryEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
