package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
	"github.com/PlaguesW/Couple-bot-backend/internal/repository"
)

const (
	inviteCodeLength   = 6
	inviteCodeChars    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeAttempts = 10
)

// PairService handles pairing business logic
type PairService struct {
	pairs repository.PairRepository
	users repository.UserRepository
}

// NewPairService creates a new pair service
func NewPairService(pairs repository.PairRepository, users repository.UserRepository) *PairService {
	return &PairService{pairs: pairs, users: users}
}

// generateInviteCode generates a random 6-character invite code
func generateInviteCode() string {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeChars))))
		code[i] = inviteCodeChars[n.Int64()]
	}
	return string(code)
}

// Create opens a new pair for the user and returns it with a fresh invite
// code. Uniqueness of the code is settled by the insert itself: on a
// unique-constraint collision a new code is generated and the insert retried.
func (s *PairService) Create(ctx context.Context, userID int64) (models.Pair, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Pair{}, fmt.Errorf("%w: user", ErrNotFound)
		}
		return models.Pair{}, err
	}

	hasPair, err := s.pairs.UserHasPair(ctx, userID)
	if err != nil {
		return models.Pair{}, err
	}
	if hasPair {
		return models.Pair{}, ErrAlreadyPaired
	}

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		pair, err := s.pairs.Create(ctx, userID, generateInviteCode())
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			if errors.Is(err, repository.ErrAlreadyPaired) {
				return models.Pair{}, ErrAlreadyPaired
			}
			return models.Pair{}, err
		}
		return pair, nil
	}
	return models.Pair{}, fmt.Errorf("failed to generate a unique invite code after %d attempts", inviteCodeAttempts)
}

// Join adds the user as the second member of the pair with the given invite
// code and marks it complete.
func (s *PairService) Join(ctx context.Context, userID int64, inviteCode string) (models.Pair, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Pair{}, fmt.Errorf("%w: user", ErrNotFound)
		}
		return models.Pair{}, err
	}

	hasPair, err := s.pairs.UserHasPair(ctx, userID)
	if err != nil {
		return models.Pair{}, err
	}
	if hasPair {
		return models.Pair{}, ErrAlreadyPaired
	}

	pair, err := s.pairs.GetByCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Pair{}, fmt.Errorf("%w: pair", ErrNotFound)
		}
		return models.Pair{}, err
	}
	if pair.User1ID == userID {
		return models.Pair{}, fmt.Errorf("%w: cannot join your own pair", ErrInvalidOperation)
	}
	if pair.User2ID != nil {
		return models.Pair{}, fmt.Errorf("%w: pair is already full", ErrNotFound)
	}

	// The user2_id IS NULL guard in the update settles any race with another
	// joiner; losing the race reads as the pair no longer being joinable. The
	// membership constraint catches a user who paired up elsewhere since the
	// pre-check above.
	joined, err := s.pairs.Complete(ctx, pair.ID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return models.Pair{}, fmt.Errorf("%w: pair is no longer joinable", ErrNotFound)
		case errors.Is(err, repository.ErrAlreadyPaired):
			return models.Pair{}, ErrAlreadyPaired
		}
		return models.Pair{}, err
	}
	return joined, nil
}

// GetByID returns a pair by id.
func (s *PairService) GetByID(ctx context.Context, pairID int64) (models.Pair, error) {
	pair, err := s.pairs.GetByID(ctx, pairID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Pair{}, fmt.Errorf("%w: pair", ErrNotFound)
		}
		return models.Pair{}, err
	}
	return pair, nil
}

// GetByTelegramID returns the pair containing the user with the given
// telegram id as either member.
func (s *PairService) GetByTelegramID(ctx context.Context, telegramID int64) (models.Pair, error) {
	u, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Pair{}, fmt.Errorf("%w: user", ErrNotFound)
		}
		return models.Pair{}, err
	}

	pair, err := s.pairs.GetByUserID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Pair{}, fmt.Errorf("%w: user is not in a pair", ErrNotFound)
		}
		return models.Pair{}, err
	}
	return pair, nil
}
