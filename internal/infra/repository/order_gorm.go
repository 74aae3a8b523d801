package repository

import (
	"context"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細は並び順どおりに読む
func (r *OrderGormRepository) withItems() *gorm.DB {
	return r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	})
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.withItems().WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if err != nil {
		return model.Order{}, translateErr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	var orders []model.Order
	err := r.withItems().WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderGormRepository) ListOpen(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.withItems().WithContext(ctx).
		Where("status NOT IN ?", []model.OrderStatus{model.OrderStatusDelivered, model.OrderStatusCancelled}).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// 明細も一緒にINSERTされる
func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return translateErr(r.db.WithContext(ctx).Create(order).Error)
}

// version一致のときだけ更新（compare-and-set）
func (r *OrderGormRepository) UpdateStatus(ctx context.Context, u repo.OrderStatusUpdate) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND version = ?", u.OrderID, u.ExpectedVersion).
		Updates(map[string]any{
			"status":        u.Status,
			"cancel_reason": u.Cancellation.Reason,
			"cancel_by":     u.Cancellation.By,
			"cancel_at":     u.Cancellation.At,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    u.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// 0件: 存在しないのか、先に誰かが更新したのか
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", u.OrderID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrVersionConflict
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, ownerID string, key string) (model.Order, bool, error) {
	var o model.Order
	err := r.withItems().WithContext(ctx).
		Where("owner_id = ? AND idempotency_key = ?", ownerID, key).
		First(&o).Error
	if err != nil {
		err = translateErr(err)
		if err == repo.ErrNotFound {
			return model.Order{}, false, nil
		}
		return model.Order{}, false, err
	}
	return o, true, nil
}
