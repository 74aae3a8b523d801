package middleware

import (
	"errors"
	"net/http"
	"strings"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/repository"
	auth "thokmarket/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	CtxUserIDKey       = "user_id"       // string
	CtxUserRoleKey     = "user_role"     // string
	CtxUserCategoryKey = "user_category" // string

	// ログイン時に発行するHttpOnly Cookie
	SessionCookieName = "userInfo"
)

// セッショントークンの検証
type SessionParser interface {
	Parse(raw string) (auth.Claims, error)
}

// Session はCookie（無ければBearer）のトークンを検証し、DBのユーザーから操作者を解決する。
// roleとcategoryはトークンではなくDBの値を使う
func Session(sessions SessionParser, userRepo repository.UserRepository, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := sessionToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated", "unauthorized"))
			}

			claims, err := sessions.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated", "unauthorized"))
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), claims.Subject)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				// DB障害はログアウト扱いにしない
				logger.Error("internal error", zap.String("op", "find session user"), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, errorJSON("internal_error", "internal error"))
			}
			if err != nil || user == nil || !user.IsActive {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated", "unauthorized"))
			}

			//token_version が一致しなければログアウト済み扱い（401）
			if user.TokenVersion != claims.TokenVersion {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthenticated", "unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, user.ID)
			c.Set(CtxUserRoleKey, string(user.Role))
			c.Set(CtxUserCategoryKey, user.Category)

			return next(c)
		}
	}
}

func sessionToken(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}

	//Bearer形式か確認してtokenを抜く
	authz := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ActorFrom はSessionが入れた値から操作者を組み立てる
func ActorFrom(c echo.Context) (model.Actor, bool) {
	userID, ok := c.Get(CtxUserIDKey).(string)
	if !ok || userID == "" {
		return model.Actor{}, false
	}
	role, _ := c.Get(CtxUserRoleKey).(string)
	category, _ := c.Get(CtxUserCategoryKey).(string)
	return model.Actor{UserID: userID, Role: model.Role(role), Category: category}, true
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errorJSON(kind string, msg string) errorResponse {
	return errorResponse{Success: false, Error: kind, Message: msg}
}
