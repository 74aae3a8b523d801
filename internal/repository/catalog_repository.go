package repository

import (
	"context"

	"thokmarket/internal/domain/model"
)

type CategoryRepository interface {
	// 名前は大文字小文字を区別せず一意（重複はErrConflict）
	Create(ctx context.Context, c *model.Category) error
	List(ctx context.Context) ([]model.Category, error)
	FindByName(ctx context.Context, name string) (model.Category, error)
	Delete(ctx context.Context, id string) error
}

type ProductTypeRepository interface {
	// カテゴリ内で名前は一意（重複はErrConflict）
	Create(ctx context.Context, pt *model.ProductType) error
	List(ctx context.Context, category string) ([]model.ProductType, error)
	FindByName(ctx context.Context, category string, name string) (model.ProductType, error)
	Delete(ctx context.Context, id string) error
}
