package repository

import (
	"context"

	"thokmarket/internal/domain/model"
)

// ユーザーごとのカート明細。他人の明細はErrNotFound扱い
type CartRepository interface {
	ListItems(ctx context.Context, userID string) ([]model.CartItem, error)
	// 同一商品は数量を加算して1行にまとめる
	AddItem(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, userID string, itemID string, qty int64) (model.CartItem, error)
	DeleteItem(ctx context.Context, userID string, itemID string) error
	Clear(ctx context.Context, userID string) error
}
