// Package model はドメインモデルを定義する。
package model

import "time"

// User はIDプロバイダーが管理するユーザーを表す。
// 認証情報はプロバイダー側が所有し、本システムはIDと
// サインイン時に返されたプロフィールの参照のみを保持する。
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
	Profile   *Profile
}

// Profile はユーザーのプロフィールメタデータを表す。
// プロバイダー側のuser_metadataに対応する。
type Profile struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
