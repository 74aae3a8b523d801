package server

import (
	"thokmarket/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlers はルート登録に使うハンドラ一式
type Handlers struct {
	Session      echo.MiddlewareFunc
	Auth         *handler.AuthHandler
	AdminUser    *handler.AdminUserHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Catalog      *handler.CatalogHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
}

// APIはすべて /api 以下（それ以外のパスはSPAのページ）
const APIPrefix = "/api"

func RegisterRoutes(e *echo.Echo, h Handlers) {
	api := e.Group(APIPrefix)
	registerAPI(api, h)
}

func registerAPI(e handler.Router, h Handlers) {
	// 認証
	h.Auth.RegisterRoutes(e, h.Session)
	h.AdminUser.RegisterRoutes(e)

	// 商品・カテゴリ
	h.Product.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, h.Session)
	h.Catalog.RegisterRoutes(e, h.Session)

	// カート・注文
	h.Cart.RegisterRoutes(e, h.Session)
	h.Order.RegisterRoutes(e, h.Session)
	h.AdminOrder.RegisterRoutes(e, h.Session)
}
