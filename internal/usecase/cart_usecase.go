package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"

	"go.uber.org/zap"
)

// CartUsecase はカート画面の業務ロジック
type CartUsecase struct {
	carts    repo.CartRepository
	products repo.ProductRepository
	idGen    IDGenerator
	clock    Clock
	logger   *zap.Logger
}

func NewCartUsecase(
	carts repo.CartRepository,
	products repo.ProductRepository,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *CartUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartUsecase{
		carts:    carts,
		products: products,
		idGen:    idGen,
		clock:    clock,
		logger:   logger,
	}
}

// price は追加時点の価格
type CartOutput struct {
	Items []model.CartItem `json:"data"`
	Total int64            `json:"total"`
}

type AddCartInput struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"productQuantity"`
}

// GetCart はカート取得（無ければ空）
func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartOutput, error) {
	if userID == "" {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCart(ctx, userID)
}

// AddToCart はカートに追加（同一商品は数量加算）
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (CartOutput, error) {
	if userID == "" {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Quantity < 1 || in.Quantity > model.MaxLineQuantity {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if !validID(in.ProductID) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	// 削除済みの商品は入れられない
	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, internalError(u.logger, "find product", err)
	}

	// 同一商品は加算されるので、合計で上限を超えないこと
	current, err := u.carts.ListItems(ctx, userID)
	if err != nil {
		return CartOutput{}, internalError(u.logger, "list cart items", err)
	}
	for _, it := range current {
		if it.ProductID == p.ID && it.Quantity+in.Quantity > model.MaxLineQuantity {
			return CartOutput{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("quantity for %q must be at most %d", p.Name, model.MaxLineQuantity))
		}
	}

	now := u.clock.Now()
	if _, err := u.carts.AddItem(ctx, model.CartItem{
		ID:          u.idGen.NewID(),
		UserID:      userID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Category:    p.Category,
		ProductType: p.ProductType,
		UnitPrice:   p.Price,
		Quantity:    in.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return CartOutput{}, internalError(u.logger, "add cart item", err)
	}

	return u.buildCart(ctx, userID)
}

// UpdateCartItem は数量変更（他人の明細は存在しない扱い）
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID string, itemID string, qty int64) (CartOutput, error) {
	if userID == "" {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if qty < 1 || qty > model.MaxLineQuantity {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if !validID(itemID) {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "cart item not found")
	}

	if _, err := u.carts.UpdateQuantity(ctx, userID, itemID, qty); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return CartOutput{}, internalError(u.logger, "update cart item", err)
	}
	return u.buildCart(ctx, userID)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID string, itemID string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !validID(itemID) {
		return NewHTTPError(http.StatusNotFound, "cart item not found")
	}

	if err := u.carts.DeleteItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return internalError(u.logger, "delete cart item", err)
	}
	return nil
}

func (u *CartUsecase) buildCart(ctx context.Context, userID string) (CartOutput, error) {
	items, err := u.carts.ListItems(ctx, userID)
	if err != nil {
		return CartOutput{}, internalError(u.logger, "list cart items", err)
	}
	if items == nil {
		items = []model.CartItem{}
	}

	var total int64
	for _, it := range items {
		sub, ok := model.MulAmount(it.UnitPrice, it.Quantity)
		if ok {
			total, ok = model.AddAmount(total, sub)
		}
		if !ok {
			return CartOutput{}, NewHTTPError(http.StatusBadRequest, "cart total is too large")
		}
	}
	return CartOutput{Items: items, Total: total}, nil
}
