package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdeaFilter narrows idea listing. Zero values mean "no filter".
type IdeaFilter struct {
	Category   models.IdeaCategory
	CostLevel  models.CostLevel
	ActiveOnly bool
	Limit      int
}

// IdeaUpdate carries the partial-update fields; nil fields are left unchanged.
type IdeaUpdate struct {
	Title       *string
	Description *string
	Category    *models.IdeaCategory
	CostLevel   *models.CostLevel
	Duration    *string
	IsActive    *bool
}

// IdeaRepository provides idea catalog persistence
type IdeaRepository interface {
	Create(ctx context.Context, idea models.Idea) (models.Idea, error)
	GetByID(ctx context.Context, id int64) (models.Idea, error)
	List(ctx context.Context, filter IdeaFilter) ([]models.Idea, error)
	Update(ctx context.Context, id int64, upd IdeaUpdate) (models.Idea, error)
	SoftDelete(ctx context.Context, id int64) error
	Random(ctx context.Context, category models.IdeaCategory, costLevel models.CostLevel) (models.Idea, error)
}

// PGIdeaRepository implements IdeaRepository with Postgres
type PGIdeaRepository struct {
	db *pgxpool.Pool
}

// NewIdeaRepository creates a new idea repository
func NewIdeaRepository(db *pgxpool.Pool) *PGIdeaRepository {
	return &PGIdeaRepository{db: db}
}

const ideaColumns = `id, title, description, category, cost_level, duration, is_active, created_at, updated_at`

func scanIdea(row pgx.Row) (models.Idea, error) {
	var i models.Idea
	err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Category, &i.CostLevel, &i.Duration, &i.IsActive, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// Create inserts a new idea and returns it
func (r *PGIdeaRepository) Create(ctx context.Context, idea models.Idea) (models.Idea, error) {
	query := `
		INSERT INTO ideas (title, description, category, cost_level, duration, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + ideaColumns
	i, err := scanIdea(r.db.QueryRow(ctx, query,
		idea.Title, idea.Description, idea.Category, idea.CostLevel, idea.Duration, idea.IsActive))
	if err != nil {
		return models.Idea{}, fmt.Errorf("failed to create idea: %w", err)
	}
	return i, nil
}

// GetByID retrieves an idea by ID, active or not
func (r *PGIdeaRepository) GetByID(ctx context.Context, id int64) (models.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE id = $1`
	i, err := scanIdea(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Idea{}, ErrNotFound
		}
		return models.Idea{}, fmt.Errorf("failed to get idea: %w", err)
	}
	return i, nil
}

// List returns ideas matching the filter, newest first
func (r *PGIdeaRepository) List(ctx context.Context, filter IdeaFilter) ([]models.Idea, error) {
	query := `
		SELECT ` + ideaColumns + `
		FROM ideas
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR cost_level = $2)
		  AND (NOT $3::bool OR is_active)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`
	rows, err := r.db.Query(ctx, query,
		string(filter.Category), string(filter.CostLevel), filter.ActiveOnly, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []models.Idea
	for rows.Next() {
		i, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		ideas = append(ideas, i)
	}
	return ideas, rows.Err()
}

// Update applies the non-nil fields and returns the updated idea
func (r *PGIdeaRepository) Update(ctx context.Context, id int64, upd IdeaUpdate) (models.Idea, error) {
	query := `
		UPDATE ideas
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    category = COALESCE($4, category),
		    cost_level = COALESCE($5, cost_level),
		    duration = COALESCE($6, duration),
		    is_active = COALESCE($7, is_active),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + ideaColumns
	i, err := scanIdea(r.db.QueryRow(ctx, query,
		id, upd.Title, upd.Description, upd.Category, upd.CostLevel, upd.Duration, upd.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Idea{}, ErrNotFound
		}
		return models.Idea{}, fmt.Errorf("failed to update idea: %w", err)
	}
	return i, nil
}

// SoftDelete deactivates an idea. Proposals keep referencing it by id.
func (r *PGIdeaRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE ideas SET is_active = FALSE, updated_at = now() WHERE id = $1 AND is_active`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Random returns a uniformly random active idea matching the filters
func (r *PGIdeaRepository) Random(ctx context.Context, category models.IdeaCategory, costLevel models.CostLevel) (models.Idea, error) {
	query := `
		SELECT ` + ideaColumns + `
		FROM ideas
		WHERE is_active
		  AND ($1 = '' OR category = $1)
		  AND ($2 = '' OR cost_level = $2)
		ORDER BY random()
		LIMIT 1`
	i, err := scanIdea(r.db.QueryRow(ctx, query, string(category), string(costLevel)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Idea{}, ErrNotFound
		}
		return models.Idea{}, fmt.Errorf("failed to pick random idea: %w", err)
	}
	return i, nil
}
