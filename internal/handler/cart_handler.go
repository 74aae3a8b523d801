package handler

import (
	"net/http"

	"thokmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カート画面のHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"productQuantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"productQuantity"`
}

type cartResponse struct {
	Success bool `json:"success"`
	usecase.CartOutput
}

func (h *CartHandler) RegisterRoutes(e Router, session echo.MiddlewareFunc) {
	e.GET("/cartView", h.getCart, session)
	e.POST("/addToCart", h.addToCart, session)
	e.PATCH("/updateCartProduct/:id", h.patchItem, session)
	e.DELETE("/deleteCartProduct/:id", h.deleteItem, session)
}

func (h *CartHandler) getCart(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), actor.UserID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cartResponse{Success: true, CartOutput: out})
}

func (h *CartHandler) addToCart(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.AddToCart(c.Request().Context(), actor.UserID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cartResponse{Success: true, CartOutput: out})
}

func (h *CartHandler) patchItem(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateCartItem(c.Request().Context(), actor.UserID, c.Param("id"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cartResponse{Success: true, CartOutput: out})
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.DeleteCartItem(c.Request().Context(), actor.UserID, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, success("product removed from cart"))
}
