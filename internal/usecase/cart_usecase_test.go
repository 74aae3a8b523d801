package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	productA = "aaaaaaaa-1111-4000-8000-000000000001"
	productB = "bbbbbbbb-1111-4000-8000-000000000002"
)

func newCartUsecase(t *testing.T) (*CartUsecase, *memStore, *ProductRepoMock) {
	t.Helper()
	store := newMemStore()
	products := new(ProductRepoMock)
	uc := NewCartUsecase(memCarts{store}, products, &seqIDGen{}, &fixedClock{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}, nil)
	return uc, store, products
}

func TestCartUsecase_AddToCart_MergesSameProduct(t *testing.T) {
	uc, store, products := newCartUsecase(t)
	ctx := context.Background()

	products.On("FindByID", mock.Anything, productA).Return(model.Product{
		ID: productA, Name: "Darjeeling", Category: "tea", ProductType: "black", Price: 120,
	}, nil)

	_, err := uc.AddToCart(ctx, customerA, AddCartInput{ProductID: productA, Quantity: 2})
	require.NoError(t, err)
	out, err := uc.AddToCart(ctx, customerA, AddCartInput{ProductID: productA, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(5), out.Items[0].Quantity)
	assert.Equal(t, "Darjeeling", out.Items[0].ProductName)
	assert.Equal(t, "black", out.Items[0].ProductType)
	assert.Equal(t, int64(600), out.Total)
	assert.Len(t, store.carts[customerA], 1)
}

func TestCartUsecase_AddToCart_MergedQuantityLimit(t *testing.T) {
	uc, store, products := newCartUsecase(t)
	ctx := context.Background()
	products.On("FindByID", mock.Anything, productA).Return(model.Product{ID: productA, Name: "Darjeeling", Price: 120}, nil)

	_, err := uc.AddToCart(ctx, customerA, AddCartInput{ProductID: productA, Quantity: model.MaxLineQuantity})
	require.NoError(t, err)

	_, err = uc.AddToCart(ctx, customerA, AddCartInput{ProductID: productA, Quantity: 1})
	assertHTTPStatus(t, err, http.StatusBadRequest, KindValidation)
	assertErrContains(t, err, "at most")
	require.Len(t, store.carts[customerA], 1)
	assert.Equal(t, model.MaxLineQuantity, store.carts[customerA][0].Quantity)
}

func TestCartUsecase_AddToCart_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		in     AddCartInput
		status int
	}{
		{"no session", "", AddCartInput{ProductID: productA, Quantity: 1}, http.StatusUnauthorized},
		{"zero quantity", customerA, AddCartInput{ProductID: productA, Quantity: 0}, http.StatusBadRequest},
		{"negative quantity", customerA, AddCartInput{ProductID: productA, Quantity: -1}, http.StatusBadRequest},
		{"quantity above limit", customerA, AddCartInput{ProductID: productA, Quantity: model.MaxLineQuantity + 1}, http.StatusBadRequest},
		{"malformed product id", customerA, AddCartInput{ProductID: "x", Quantity: 1}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, products := newCartUsecase(t)
			_, err := uc.AddToCart(ctx, tt.userID, tt.in)
			assertHTTPStatus(t, err, tt.status, KindForStatus(tt.status))
			products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		})
	}

	t.Run("deleted product", func(t *testing.T) {
		uc, store, products := newCartUsecase(t)
		products.On("FindByID", mock.Anything, productB).Return(model.Product{}, repo.ErrNotFound)

		_, err := uc.AddToCart(ctx, customerA, AddCartInput{ProductID: productB, Quantity: 1})
		assertHTTPStatus(t, err, http.StatusNotFound, KindNotFound)
		assert.Empty(t, store.carts[customerA])
	})

	t.Run("db error", func(t *testing.T) {
		uc, _, products := newCartUsecase(t)
		products.On("FindByID", mock.Anything, productB).Return(model.Product{}, errors.New("boom"))

		_, err := uc.AddToCart(ctx, customerA, AddCartInput{ProductID: productB, Quantity: 1})
		assertHTTPStatus(t, err, http.StatusInternalServerError, KindInternal)
	})
}

func TestCartUsecase_UpdateAndDelete_Ownership(t *testing.T) {
	uc, store, _ := newCartUsecase(t)
	ctx := context.Background()

	itemID := "dddddddd-1111-4000-8000-000000000001"
	store.carts[customerA] = []model.CartItem{{
		ID: itemID, UserID: customerA, ProductID: productA, ProductName: "A", UnitPrice: 100, Quantity: 2,
	}}

	out, err := uc.UpdateCartItem(ctx, customerA, itemID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(700), out.Total)

	_, err = uc.UpdateCartItem(ctx, customerA, itemID, 0)
	assertHTTPStatus(t, err, http.StatusBadRequest, KindValidation)
	_, err = uc.UpdateCartItem(ctx, customerA, itemID, model.MaxLineQuantity+1)
	assertHTTPStatus(t, err, http.StatusBadRequest, KindValidation)

	// 他人の明細は見えない
	_, err = uc.UpdateCartItem(ctx, customerB, itemID, 3)
	assertHTTPStatus(t, err, http.StatusNotFound, KindNotFound)
	err = uc.DeleteCartItem(ctx, customerB, itemID)
	assertHTTPStatus(t, err, http.StatusNotFound, KindNotFound)

	require.NoError(t, uc.DeleteCartItem(ctx, customerA, itemID))

	cart, err := uc.GetCart(ctx, customerA)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
	assert.Equal(t, int64(0), cart.Total)

	err = uc.DeleteCartItem(ctx, customerA, itemID)
	assertHTTPStatus(t, err, http.StatusNotFound, KindNotFound)
}

func TestCartUsecase_StoreErrors(t *testing.T) {
	carts := new(CartRepoMock)
	uc := NewCartUsecase(carts, new(ProductRepoMock), &seqIDGen{}, &fixedClock{}, nil)
	ctx := context.Background()

	carts.On("ListItems", mock.Anything, customerA).Return(nil, errors.New("timeout"))
	_, err := uc.GetCart(ctx, customerA)
	assertHTTPStatus(t, err, http.StatusInternalServerError, KindInternal)

	itemID := "dddddddd-1111-4000-8000-000000000002"
	carts.On("DeleteItem", mock.Anything, customerA, itemID).Return(errors.New("timeout"))
	err = uc.DeleteCartItem(ctx, customerA, itemID)
	assertHTTPStatus(t, err, http.StatusInternalServerError, KindInternal)
}
