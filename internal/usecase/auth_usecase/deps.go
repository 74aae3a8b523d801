package auth

import (
	"errors"
	"time"

	"thokmarket/internal/validator"
)

var (
	// 入力が不正（validatorのエラーと同じ）
	ErrInvalidInput = validator.ErrInvalidInput

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")

	// メールまたはパスワードが違う
	ErrInvalidCredentials = errors.New("invalid credentials")

	// 停止済みユーザー
	ErrUserInactive = errors.New("user is inactive")

	// 署名・期限・アルゴリズムのどれかが不正
	ErrInvalidToken = errors.New("invalid session token")

	ErrUserNotFound = errors.New("user not found")
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// セッショントークンを発行する約束
type SessionIssuer interface {
	Issue(userID string, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}
