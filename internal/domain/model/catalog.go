package model

import "time"

// 管理者が登録する商品カテゴリ
type Category struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"category"`
	CreatedBy string    `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// カテゴリ配下の商品タイプ
type ProductType struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Category  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_type_category_name" json:"category"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_type_category_name" json:"productType"`
	Image     string    `gorm:"type:text" json:"image"`
	CreatedBy string    `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
