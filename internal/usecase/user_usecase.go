package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

// EnsureUser returns the stored user for uid, creating it from the token
// claims the first time the uid is seen.
func (uc *UserUseCase) EnsureUser(ctx context.Context, uid, email, role string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	if role != entity.RoleAdmin {
		role = entity.RoleCustomer
	}
	user = &entity.User{
		ID:    uid,
		Email: email,
		Role:  role,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User provisioned: uid=%s role=%s", uid, role)
	return user, nil
}

func (uc *UserUseCase) GetUser(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}
