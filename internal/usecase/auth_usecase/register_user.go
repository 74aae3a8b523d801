package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/repository"
	"thokmarket/internal/validator"
)

// 会員登録の入力
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	// adminだけ必須
	Category string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	idGen    IDGenerator
	clock    Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		idGen:    idGen,
		clock:    clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	name := validator.CleanText(in.Name, 100)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validator.ValidateSignup(name, email, in.Password); err != nil {
		return out, err
	}

	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}
	category := ""
	switch role {
	case model.RoleCustomer:
	case model.RoleAdmin:
		category = validator.CleanText(in.Category, 100)
		if category == "" {
			return out, fmt.Errorf("%w: category is required for admin", ErrInvalidInput)
		}
	default:
		return out, fmt.Errorf("%w: unknown role", ErrInvalidInput)
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return out, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return out, err
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.idGen.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Category:     category,
		TokenVersion: 0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 同時登録はDBの一意制約で弾く
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	// 返すときはハッシュを空にして漏洩防止
	safeUser := *user
	safeUser.PasswordHash = ""

	out.User = safeUser
	return out, nil
}
