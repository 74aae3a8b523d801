package model

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "order confirmed"
	OrderStatusDelivered OrderStatus = "order delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 1行あたりの最小注文数
const MinOrderQuantity int64 = 5

// 1行あたりの最大数量（カート・注文とも）
const MaxLineQuantity int64 = 10_000

// 終端（これ以上遷移しない）
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// キャンセル情報。statusがcancelledのときだけ埋まる
type Cancellation struct {
	Reason string     `gorm:"type:varchar(300)" json:"reason"`
	By     Role       `gorm:"type:varchar(20)" json:"cancelledBy"`
	At     *time.Time `json:"cancelledAt"`
}

func (c Cancellation) IsZero() bool {
	return c.Reason == "" && c.By == "" && c.At == nil
}

type Order struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_owner_idem" json:"ownerId"`

	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalProducts int         `gorm:"not null" json:"totalProducts"`
	TotalPrice    int64       `gorm:"not null" json:"totalPrice"`

	Status       OrderStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	Cancellation Cancellation `gorm:"embedded;embeddedPrefix:cancel_" json:"cancellation"`

	// 楽観ロック用。状態更新のたびに+1
	Version int64 `gorm:"not null;default:1" json:"version"`

	// 同じキーの再送は同じ注文を返す（NULLなら重複チェックなし）
	IdempotencyKey *string `gorm:"type:varchar(255);uniqueIndex:idx_orders_owner_idem" json:"-"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// 旧フロント互換の表示用ステータス
func (o Order) DisplayStatus() string {
	if o.Status == OrderStatusCancelled {
		return fmt.Sprintf("cancel (%s) by %s", o.Cancellation.Reason, o.Cancellation.By)
	}
	return string(o.Status)
}
