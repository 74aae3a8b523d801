package model

import (
	"time"

	"gorm.io/gorm"
)

// 商品画像は最大3枚
const MaxProductImages = 3

// 単価の上限（ルピー）
const MaxProductPrice int64 = 10_000_000

type Product struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"productName"`
	Description string `gorm:"type:text" json:"productDescription"`
	Price       int64  `gorm:"not null" json:"productPrice"`
	Category    string `gorm:"type:varchar(100);not null;index" json:"category"`
	ProductType string `gorm:"type:varchar(100);not null;index" json:"productType"`
	// 画像URLはjsonbで保存
	Images    StringList     `gorm:"type:jsonb;not null" json:"images"`
	CreatedBy string         `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
