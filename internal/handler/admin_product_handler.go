package handler

import (
	"net/http"

	"thokmarket/internal/middleware"
	"thokmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理者の商品登録・削除
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e Router, session echo.MiddlewareFunc) {
	adminOnly := []echo.MiddlewareFunc{session, middleware.AdminRoleGuard()}

	e.POST("/productCreate", h.createProduct, adminOnly...)
	e.DELETE("/product/:id", h.deleteProduct, adminOnly...)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	var req usecase.CreateProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), actor, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, productResponse{Success: true, Message: "product created", Data: p})
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, success("product deleted"))
}
