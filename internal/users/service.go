package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"gorm.io/gorm"
)

const maxPushTokenLength = 512

type userStore interface {
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	UpdatePushToken(ctx context.Context, id uint64, token *string) error
}

// Service manages the device registration used for push notifications.
type Service interface {
	SavePushToken(ctx context.Context, userID uint64, token string) error
	PushToken(ctx context.Context, userID uint64) (string, error)
}

type service struct {
	repo userStore
}

func NewService(repo userStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SavePushToken(ctx context.Context, userID uint64, token string) error {
	if userID == 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	token = strings.TrimSpace(token)
	if len(token) > maxPushTokenLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "token too long")
	}

	var value *string
	if token != "" {
		value = &token
	}
	if err := s.repo.UpdatePushToken(ctx, userID, value); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save push token")
	}
	return nil
}

// PushToken returns the registered device token or "" when none is stored.
func (s *service) PushToken(ctx context.Context, userID uint64) (string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user.PushToken == nil {
		return "", nil
	}
	return *user.PushToken, nil
}
