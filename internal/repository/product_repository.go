package repository

import (
	"context"

	"thokmarket/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Category    string
	ProductType string
	Limit       int
	Offset      int
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	// 論理削除済みはErrNotFound
	FindByID(ctx context.Context, id string) (model.Product, error)
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	SoftDelete(ctx context.Context, id string) error
}
