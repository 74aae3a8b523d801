package model

import "time"

// カートの明細
// 追加時点の商品名・価格などをコピーして持つ。同じ商品は1行にまとめる
type CartItem struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product" json:"-"`
	ProductID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"productName"`
	Category    string    `gorm:"type:varchar(100);not null" json:"category"`
	ProductType string    `gorm:"type:varchar(100);not null" json:"productType"`
	UnitPrice   int64     `gorm:"not null" json:"productPrice"`
	Quantity    int64     `gorm:"not null" json:"productQuantity"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}
