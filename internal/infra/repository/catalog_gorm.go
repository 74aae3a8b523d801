package repository

import (
	"context"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 大文字小文字違いも重複扱い
		var n int64
		if err := tx.Model(&model.Category{}).Where("LOWER(name) = LOWER(?)", c.Name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return repo.ErrConflict
		}
		return translateErr(tx.Create(c).Error)
	})
}

func (r *CategoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoryGormRepository) FindByName(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&c).Error
	if err != nil {
		return model.Category{}, translateErr(err)
	}
	return c, nil
}

func (r *CategoryGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type ProductTypeGormRepository struct {
	db *gorm.DB
}

func NewProductTypeGormRepository(db *gorm.DB) *ProductTypeGormRepository {
	return &ProductTypeGormRepository{db: db}
}

func (r *ProductTypeGormRepository) Create(ctx context.Context, pt *model.ProductType) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.ProductType{}).
			Where("category = ? AND LOWER(name) = LOWER(?)", pt.Category, pt.Name).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return repo.ErrConflict
		}
		return translateErr(tx.Create(pt).Error)
	})
}

// categoryが空なら全件
func (r *ProductTypeGormRepository) List(ctx context.Context, category string) ([]model.ProductType, error) {
	q := r.db.WithContext(ctx).Model(&model.ProductType{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []model.ProductType
	if err := q.Order("category asc").Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductTypeGormRepository) FindByName(ctx context.Context, category string, name string) (model.ProductType, error) {
	var pt model.ProductType
	err := r.db.WithContext(ctx).
		Where("category = ? AND LOWER(name) = LOWER(?)", category, name).
		First(&pt).Error
	if err != nil {
		return model.ProductType{}, translateErr(err)
	}
	return pt, nil
}

func (r *ProductTypeGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProductType{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
