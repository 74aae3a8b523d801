package auth

import (
	"context"
	"errors"

	"thokmarket/internal/domain/model"
	"thokmarket/internal/repository"
)

// ログイン中ユーザーの取得（/getRole, /profile）
type MeUsecase struct {
	userRepo repository.UserRepository
}

func NewMeUsecase(userRepo repository.UserRepository) *MeUsecase {
	return &MeUsecase{userRepo: userRepo}
}

func (u *MeUsecase) Execute(ctx context.Context, userID string) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}

	safeUser := *user
	safeUser.PasswordHash = ""
	return safeUser, nil
}
