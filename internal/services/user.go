package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
	"github.com/PlaguesW/Couple-bot-backend/internal/repository"
)

// UserService handles user registration and profile logic
type UserService struct {
	users repository.UserRepository
	pairs repository.PairRepository
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, pairs repository.PairRepository) *UserService {
	return &UserService{users: users, pairs: pairs}
}

// Register creates a user keyed by telegram id.
func (s *UserService) Register(ctx context.Context, telegramID int64, name string, username *string) (models.User, error) {
	if telegramID <= 0 {
		return models.User{}, fmt.Errorf("%w: telegram_id is required", ErrInvalidOperation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, fmt.Errorf("%w: name is required", ErrInvalidOperation)
	}

	u, err := s.users.Create(ctx, telegramID, name, username)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, fmt.Errorf("%w: user with telegram_id %d", ErrConflict, telegramID)
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByTelegramID returns the user with the given telegram id.
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (models.User, error) {
	u, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, fmt.Errorf("%w: user", ErrNotFound)
		}
		return models.User{}, err
	}
	return u, nil
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// Update applies a partial profile update.
func (s *UserService) Update(ctx context.Context, telegramID int64, name, username *string) (models.User, error) {
	if name != nil && strings.TrimSpace(*name) == "" {
		return models.User{}, fmt.Errorf("%w: name must not be empty", ErrInvalidOperation)
	}

	u, err := s.users.Update(ctx, telegramID, name, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, fmt.Errorf("%w: user", ErrNotFound)
		}
		return models.User{}, err
	}
	return u, nil
}

// Delete removes a user. Deletion is refused while the user is in a pair;
// the schema's FK constraints backstop any remaining proposal references.
func (s *UserService) Delete(ctx context.Context, telegramID int64) error {
	u, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return err
	}

	hasPair, err := s.pairs.UserHasPair(ctx, u.ID)
	if err != nil {
		return err
	}
	if hasPair {
		return fmt.Errorf("%w: user is in a pair", ErrInvalidOperation)
	}

	if err := s.users.Delete(ctx, telegramID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("%w: user", ErrNotFound)
		case errors.Is(err, repository.ErrRestricted):
			return fmt.Errorf("%w: user has existing references", ErrInvalidOperation)
		}
		return err
	}
	return nil
}
