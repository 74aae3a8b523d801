package repository

import (
	"context"
	"time"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// カート明細を追加順で取得
func (r *CartGormRepository) ListItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// 同じ商品があれば数量を加算（価格などは最新で上書き）
func (r *CartGormRepository) AddItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":     gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
			"product_name": gorm.Expr("EXCLUDED.product_name"),
			"unit_price":   gorm.Expr("EXCLUDED.unit_price"),
			"updated_at":   gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&item).Error
	if err != nil {
		return model.CartItem{}, err
	}

	var saved model.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
		First(&saved).Error; err != nil {
		return model.CartItem{}, translateErr(err)
	}
	return saved, nil
}

// 他人の明細は0件更新になるのでErrNotFound
func (r *CartGormRepository) UpdateQuantity(ctx context.Context, userID string, itemID string, qty int64) (model.CartItem, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now()})
	if res.Error != nil {
		return model.CartItem{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.CartItem{}, repo.ErrNotFound
	}

	var saved model.CartItem
	if err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&saved).Error; err != nil {
		return model.CartItem{}, translateErr(err)
	}
	return saved, nil
}

func (r *CartGormRepository) DeleteItem(ctx context.Context, userID string, itemID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ユーザーの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}
