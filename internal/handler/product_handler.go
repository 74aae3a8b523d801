package handler

import (
	"net/http"
	"strconv"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 商品の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type productListResponse struct {
	Success bool `json:"success"`
	usecase.ProductListOutput
}

type productResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    model.Product `json:"data"`
}

func (h *ProductHandler) RegisterRoutes(e Router) {
	e.GET("/products", h.list)
	e.GET("/product/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, err := intQuery(c, "page")
	if err != nil {
		return badRequest(c, "invalid page")
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Category:    c.QueryParam("category"),
		ProductType: c.QueryParam("type"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, productListResponse{Success: true, ProductListOutput: out})
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, productResponse{Success: true, Data: p})
}

// 未指定は0（usecase側の既定値を使う）
func intQuery(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
