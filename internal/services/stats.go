package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
	"github.com/PlaguesW/Couple-bot-backend/internal/repository"
)

// StatsService derives read-only proposal statistics per pair
type StatsService struct {
	proposals repository.ProposalRepository
	pairs     repository.PairRepository
}

// NewStatsService creates a new stats service
func NewStatsService(proposals repository.ProposalRepository, pairs repository.PairRepository) *StatsService {
	return &StatsService{proposals: proposals, pairs: pairs}
}

// ForPair aggregates the pair's proposal counts and acceptance rate. The rate
// is accepted/total*100 rounded to 2 decimals, 0 when the pair has no
// proposals yet.
func (s *StatsService) ForPair(ctx context.Context, pairID int64) (models.PairStats, error) {
	if _, err := s.pairs.GetByID(ctx, pairID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.PairStats{}, fmt.Errorf("%w: pair", ErrNotFound)
		}
		return models.PairStats{}, err
	}

	counts, err := s.proposals.CountByStatus(ctx, pairID)
	if err != nil {
		return models.PairStats{}, err
	}

	var rate float64
	if counts.Total > 0 {
		rate = math.Round(float64(counts.Accepted)/float64(counts.Total)*100*100) / 100
	}
	return models.PairStats{
		PairID:         pairID,
		ProposalCounts: counts,
		AcceptanceRate: rate,
	}, nil
}
