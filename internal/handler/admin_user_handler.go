package handler

import (
	"crypto/subtle"
	"net/http"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/usecase"
	auth "thokmarket/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// 管理者アカウントの作成（X-Admin-Keyが必要）
type AdminUserHandler struct {
	signupKey string
	auth      *AuthHandler
}

func NewAdminUserHandler(signupKey string, authH *AuthHandler) *AdminUserHandler {
	return &AdminUserHandler{signupKey: signupKey, auth: authH}
}

type adminSignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Category string `json:"category"`
}

func (h *AdminUserHandler) RegisterRoutes(e Router) {
	e.POST("/admin/signup", h.Signup)
}

func (h *AdminUserHandler) Signup(c echo.Context) error {
	// キー未設定なら無効
	if h.signupKey == "" {
		return c.JSON(http.StatusForbidden, errorBody(usecase.KindForbidden, "admin signup is disabled"))
	}
	key := c.Request().Header.Get("X-Admin-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.signupKey)) != 1 {
		return c.JSON(http.StatusForbidden, errorBody(usecase.KindForbidden, "invalid admin key"))
	}

	var req adminSignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.auth.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleAdmin,
		Category: req.Category,
	})
	if err != nil {
		return h.auth.writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, userResponse{Success: true, Message: "admin account created", User: out.User})
}
