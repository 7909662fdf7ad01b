package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
	"github.com/PlaguesW/Couple-bot-backend/internal/repository"
)

const (
	defaultIdeaLimit = 10
	maxIdeaLimit     = 100
)

// IdeaService handles the date idea catalog
type IdeaService struct {
	ideas repository.IdeaRepository
}

// NewIdeaService creates a new idea service
func NewIdeaService(ideas repository.IdeaRepository) *IdeaService {
	return &IdeaService{ideas: ideas}
}

// Create adds a new idea to the catalog.
func (s *IdeaService) Create(ctx context.Context, idea models.Idea) (models.Idea, error) {
	idea.Title = strings.TrimSpace(idea.Title)
	if idea.Title == "" {
		return models.Idea{}, fmt.Errorf("%w: title is required", ErrInvalidOperation)
	}
	if !idea.Category.IsValid() {
		return models.Idea{}, fmt.Errorf("%w: unknown category %q", ErrInvalidOperation, idea.Category)
	}
	if !idea.CostLevel.IsValid() {
		return models.Idea{}, fmt.Errorf("%w: unknown cost level %q", ErrInvalidOperation, idea.CostLevel)
	}
	return s.ideas.Create(ctx, idea)
}

// GetByID returns an idea by id.
func (s *IdeaService) GetByID(ctx context.Context, id int64) (models.Idea, error) {
	idea, err := s.ideas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Idea{}, fmt.Errorf("%w: idea", ErrNotFound)
		}
		return models.Idea{}, err
	}
	return idea, nil
}

// List returns ideas matching the filter, newest first.
func (s *IdeaService) List(ctx context.Context, filter repository.IdeaFilter) ([]models.Idea, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidOperation, filter.Category)
	}
	if filter.CostLevel != "" && !filter.CostLevel.IsValid() {
		return nil, fmt.Errorf("%w: unknown cost level %q", ErrInvalidOperation, filter.CostLevel)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultIdeaLimit
	}
	if filter.Limit > maxIdeaLimit {
		filter.Limit = maxIdeaLimit
	}
	return s.ideas.List(ctx, filter)
}

// Update applies a partial update to an idea.
func (s *IdeaService) Update(ctx context.Context, id int64, upd repository.IdeaUpdate) (models.Idea, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return models.Idea{}, fmt.Errorf("%w: title must not be empty", ErrInvalidOperation)
	}
	if upd.Category != nil && !upd.Category.IsValid() {
		return models.Idea{}, fmt.Errorf("%w: unknown category %q", ErrInvalidOperation, *upd.Category)
	}
	if upd.CostLevel != nil && !upd.CostLevel.IsValid() {
		return models.Idea{}, fmt.Errorf("%w: unknown cost level %q", ErrInvalidOperation, *upd.CostLevel)
	}

	idea, err := s.ideas.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Idea{}, fmt.Errorf("%w: idea", ErrNotFound)
		}
		return models.Idea{}, err
	}
	return idea, nil
}

// Delete deactivates an idea. The row stays so proposal history keeps
// resolving.
func (s *IdeaService) Delete(ctx context.Context, id int64) error {
	if err := s.ideas.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: idea", ErrNotFound)
		}
		return err
	}
	return nil
}

// Random returns a uniformly random active idea matching the filters.
func (s *IdeaService) Random(ctx context.Context, category models.IdeaCategory, costLevel models.CostLevel) (models.Idea, error) {
	if category != "" && !category.IsValid() {
		return models.Idea{}, fmt.Errorf("%w: unknown category %q", ErrInvalidOperation, category)
	}
	if costLevel != "" && !costLevel.IsValid() {
		return models.Idea{}, fmt.Errorf("%w: unknown cost level %q", ErrInvalidOperation, costLevel)
	}

	idea, err := s.ideas.Random(ctx, category, costLevel)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Idea{}, fmt.Errorf("%w: no ideas match", ErrNotFound)
		}
		return models.Idea{}, err
	}
	return idea, nil
}
