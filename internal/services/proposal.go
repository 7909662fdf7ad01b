package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
	"github.com/PlaguesW/Couple-bot-backend/internal/repository"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ProposalInput carries the fields of a new date proposal.
type ProposalInput struct {
	PairID            int64
	ProposerID        int64
	IdeaID            *int64
	CustomDescription *string
	ProposedDate      *string // YYYY-MM-DD
	ProposedTime      *string // HH:MM
}

// ProposalService handles the date proposal lifecycle
type ProposalService struct {
	proposals repository.ProposalRepository
	pairs     repository.PairRepository
	ideas     repository.IdeaRepository
}

// NewProposalService creates a new proposal service
func NewProposalService(proposals repository.ProposalRepository, pairs repository.PairRepository, ideas repository.IdeaRepository) *ProposalService {
	return &ProposalService{proposals: proposals, pairs: pairs, ideas: ideas}
}

func pairMember(pair models.Pair, userID int64) bool {
	return pair.User1ID == userID || (pair.User2ID != nil && *pair.User2ID == userID)
}

// Propose creates a pending proposal for the pair.
func (s *ProposalService) Propose(ctx context.Context, in ProposalInput) (models.Proposal, error) {
	pair, err := s.pairs.GetByID(ctx, in.PairID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Proposal{}, fmt.Errorf("%w: pair", ErrNotFound)
		}
		return models.Proposal{}, err
	}
	if !pairMember(pair, in.ProposerID) {
		return models.Proposal{}, ErrForbidden
	}

	if in.IdeaID != nil {
		if _, err := s.ideas.GetByID(ctx, *in.IdeaID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return models.Proposal{}, fmt.Errorf("%w: idea", ErrNotFound)
			}
			return models.Proposal{}, err
		}
	} else if in.CustomDescription == nil || *in.CustomDescription == "" {
		return models.Proposal{}, fmt.Errorf("%w: either idea_id or custom_description is required", ErrInvalidOperation)
	}

	if in.ProposedDate != nil {
		if _, err := time.Parse("2006-01-02", *in.ProposedDate); err != nil {
			return models.Proposal{}, fmt.Errorf("%w: proposed_date must be YYYY-MM-DD", ErrInvalidOperation)
		}
	}
	if in.ProposedTime != nil {
		if _, err := time.Parse("15:04", *in.ProposedTime); err != nil {
			return models.Proposal{}, fmt.Errorf("%w: proposed_time must be HH:MM", ErrInvalidOperation)
		}
	}

	return s.proposals.Create(ctx, models.Proposal{
		PairID:            in.PairID,
		ProposerID:        in.ProposerID,
		IdeaID:            in.IdeaID,
		CustomDescription: in.CustomDescription,
		ProposedDate:      in.ProposedDate,
		ProposedTime:      in.ProposedTime,
		Status:            models.ProposalPending,
	})
}

// Respond settles a pending proposal as accepted or rejected. Only the
// non-proposing member of the pair may respond, exactly once.
func (s *ProposalService) Respond(ctx context.Context, proposalID, responderID int64, status models.ProposalStatus, note *string) (models.Proposal, error) {
	if status != models.ProposalAccepted && status != models.ProposalRejected {
		return models.Proposal{}, fmt.Errorf("%w: status must be accepted or rejected", ErrInvalidOperation)
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Proposal{}, fmt.Errorf("%w: proposal", ErrNotFound)
		}
		return models.Proposal{}, err
	}

	pair, err := s.pairs.GetByID(ctx, proposal.PairID)
	if err != nil {
		return models.Proposal{}, err
	}
	if !pairMember(pair, responderID) {
		return models.Proposal{}, ErrForbidden
	}
	if proposal.ProposerID == responderID {
		return models.Proposal{}, fmt.Errorf("%w: cannot respond to your own proposal", ErrInvalidOperation)
	}
	if proposal.Status != models.ProposalPending {
		return models.Proposal{}, fmt.Errorf("%w: proposal is already %s", ErrInvalidOperation, proposal.Status)
	}

	// The status = 'pending' guard in the update is the authority; a
	// concurrent response surfaces here as no matched row.
	responded, err := s.proposals.Respond(ctx, proposalID, status, responderID, note)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Proposal{}, fmt.Errorf("%w: proposal is already settled", ErrInvalidOperation)
		}
		return models.Proposal{}, err
	}
	return responded, nil
}

// GetByID returns a proposal by id.
func (s *ProposalService) GetByID(ctx context.Context, proposalID int64) (models.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Proposal{}, fmt.Errorf("%w: proposal", ErrNotFound)
		}
		return models.Proposal{}, err
	}
	return proposal, nil
}

func clampHistoryLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

// History returns the pair's proposals, newest first, enriched with idea and
// proposer details. An empty status means all statuses.
func (s *ProposalService) History(ctx context.Context, pairID int64, status models.ProposalStatus, limit int) ([]models.ProposalDetails, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOperation, status)
	}
	if _, err := s.pairs.GetByID(ctx, pairID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: pair", ErrNotFound)
		}
		return nil, err
	}
	return s.proposals.ListByPair(ctx, pairID, status, clampHistoryLimit(limit))
}

// ListForUser resolves the user's pair and returns its proposals, optionally
// filtered by status. A non-positive limit means the default page size.
func (s *ProposalService) ListForUser(ctx context.Context, userID int64, status models.ProposalStatus, limit int) ([]models.ProposalDetails, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOperation, status)
	}
	pair, err := s.pairs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user is not in a pair", ErrNotFound)
		}
		return nil, err
	}
	return s.proposals.ListByPair(ctx, pair.ID, status, clampHistoryLimit(limit))
}
