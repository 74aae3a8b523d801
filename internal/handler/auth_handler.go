package handler

import (
	"errors"
	"net/http"
	"time"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/middleware"
	"thokmarket/internal/usecase"
	auth "thokmarket/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	registerUC   *auth.RegisterUserUsecase // 会員登録usecase
	loginUC      *auth.LoginUsecase        // ログインusecase
	logoutUC     *auth.LogoutUsecase
	meUC         *auth.MeUsecase
	orderUC      *usecase.OrderUsecase // /profile の注文一覧
	cookieSecure bool
	logger       *zap.Logger
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	logoutUC *auth.LogoutUsecase,
	meUC *auth.MeUsecase,
	orderUC *usecase.OrderUsecase,
	cookieSecure bool,
	logger *zap.Logger,
) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		logoutUC:     logoutUC,
		meUC:         meUC,
		orderUC:      orderUC,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// /signup のリクエストボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	User    model.User `json:"user"`
}

type roleResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Category string `json:"category"`
}

type profileResponse struct {
	Success bool                  `json:"success"`
	User    model.User            `json:"user"`
	Orders  []usecase.OrderOutput `json:"orders"`
}

func (h *AuthHandler) RegisterRoutes(e Router, session echo.MiddlewareFunc) {
	e.POST("/signup", h.Register)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout, session)
	e.GET("/getRole", h.GetRole, session)
	e.GET("/profile", h.Profile, session)
}

// RegisterはPOST /signupのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleCustomer,
	})
	if err != nil {
		return h.writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, userResponse{Success: true, Message: "account created", User: out.User})
}

// LoginはPOST /login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.writeAuthError(c, err)
	}

	h.setSessionCookie(c, out.Token, out.ExpiresAt)
	return c.JSON(http.StatusOK, userResponse{Success: true, Message: "logged in", User: out.User})
}

// Logout はtoken_versionを上げてCookieを消す
func (h *AuthHandler) Logout(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.logoutUC.Execute(c.Request().Context(), actor.UserID); err != nil {
		return h.writeAuthError(c, err)
	}

	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, success("logged out"))
}

func (h *AuthHandler) GetRole(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.meUC.Execute(c.Request().Context(), actor.UserID)
	if err != nil {
		return h.writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, roleResponse{
		Success:  true,
		ID:       user.ID,
		Name:     user.Name,
		Role:     string(user.Role),
		Category: user.Category,
	})
}

// Profile はユーザーと注文一覧（adminは未完了の注文）
func (h *AuthHandler) Profile(c echo.Context) error {
	actor, ok := getActor(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.meUC.Execute(c.Request().Context(), actor.UserID)
	if err != nil {
		return h.writeAuthError(c, err)
	}

	orders, err := h.orderUC.ListForActor(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, profileResponse{Success: true, User: user, Orders: orders})
}

// auth usecaseのエラーをHTTPに変換
func (h *AuthHandler) writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, errorBody(usecase.KindValidation, err.Error()))
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, errorBody(usecase.KindConflict, "email already exists"))
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorBody(usecase.KindUnauthenticated, "invalid email or password"))
	case errors.Is(err, auth.ErrUserInactive):
		return c.JSON(http.StatusForbidden, errorBody(usecase.KindForbidden, "account is disabled"))
	case errors.Is(err, auth.ErrUserNotFound):
		return unauthorized(c)
	default:
		h.logger.Error("internal error", zap.String("op", "auth"), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorBody(usecase.KindInternal, "internal error"))
	}
}

// セッショントークンをCookieにセット。
func (h *AuthHandler) setSessionCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
