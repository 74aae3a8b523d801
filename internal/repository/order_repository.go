package repository

import (
	"context"
	"time"

	"thokmarket/internal/domain/model"
)

// 状態更新の内容（versionが一致したときだけ反映）
type OrderStatusUpdate struct {
	OrderID         string
	ExpectedVersion int64
	Status          model.OrderStatus
	Cancellation    model.Cancellation
	UpdatedAt       time.Time
}

type OrderRepository interface {
	// 明細ごと保存する
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, ownerID string, key string) (model.Order, bool, error)
	// 新しい順
	ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error)
	// 配達済み・キャンセル以外（新しい順）
	ListOpen(ctx context.Context) ([]model.Order, error)
	// 0件ならErrNotFoundかErrVersionConflict
	UpdateStatus(ctx context.Context, u OrderStatusUpdate) error
}
