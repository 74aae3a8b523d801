package model

import "math"

// 注文明細。カートのコピーなので商品やカートが変わっても影響しない
type OrderItem struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     string `gorm:"type:uuid;not null;index" json:"-"`
	Position    int    `gorm:"not null" json:"-"`
	ProductID   string `gorm:"type:uuid;not null" json:"productId"`
	ProductName string `gorm:"type:varchar(255);not null" json:"productName"`
	Category    string `gorm:"type:varchar(100);not null" json:"category"`
	ProductType string `gorm:"type:varchar(100);not null" json:"productType"`
	UnitPrice   int64  `gorm:"not null" json:"productPrice"`
	Quantity    int64  `gorm:"not null" json:"productQuantity"`
}

// Subtotal は単価×数量。桁あふれするならfalse
func (it OrderItem) Subtotal() (int64, bool) {
	return MulAmount(it.UnitPrice, it.Quantity)
}

// MulAmount は金額×数量（負の値と桁あふれはfalse）
func MulAmount(price int64, qty int64) (int64, bool) {
	if price < 0 || qty < 0 {
		return 0, false
	}
	if qty != 0 && price > math.MaxInt64/qty {
		return 0, false
	}
	return price * qty, true
}

// AddAmount は合計への加算（桁あふれはfalse）
func AddAmount(total int64, v int64) (int64, bool) {
	if total < 0 || v < 0 || v > math.MaxInt64-total {
		return 0, false
	}
	return total + v, true
}
