package repository

import (
	"context"

	"thokmarket/internal/domain/model"
)

// ユーザーの保存・取得を約束（見つからなければErrNotFound）
type UserRepository interface {
	//新規ユーザー作成（email重複はErrConflict）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 最終ログインなどの更新
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１（ログアウトで既存セッションを無効化）
	IncrementTokenVersion(ctx context.Context, userID string) error
}
