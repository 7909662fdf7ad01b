package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PairRepository provides pair persistence
type PairRepository interface {
	Create(ctx context.Context, userID int64, inviteCode string) (models.Pair, error)
	GetByID(ctx context.Context, id int64) (models.Pair, error)
	GetByCode(ctx context.Context, inviteCode string) (models.Pair, error)
	GetByUserID(ctx context.Context, userID int64) (models.Pair, error)
	UserHasPair(ctx context.Context, userID int64) (bool, error)
	Complete(ctx context.Context, pairID, userID int64) (models.Pair, error)
}

// PGPairRepository implements PairRepository with Postgres
type PGPairRepository struct {
	db *pgxpool.Pool
}

// NewPairRepository creates a new pair repository
func NewPairRepository(db *pgxpool.Pool) *PGPairRepository {
	return &PGPairRepository{db: db}
}

const pairColumns = `id, invite_code, user1_id, user2_id, is_complete, created_at, updated_at`

func scanPair(row pgx.Row) (models.Pair, error) {
	var p models.Pair
	err := row.Scan(&p.ID, &p.InviteCode, &p.User1ID, &p.User2ID, &p.IsComplete, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts an open pair for userID and records the membership row in
// the same transaction. pair_members(user_id) is the primary key, so a user
// who already belongs to any pair fails the insert with ErrAlreadyPaired even
// against a concurrent writer. A duplicate invite code surfaces as
// ErrDuplicate so the caller can retry with a fresh code.
func (r *PGPairRepository) Create(ctx context.Context, userID int64, inviteCode string) (models.Pair, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.Pair{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO pairs (invite_code, user1_id)
		VALUES ($1, $2)
		RETURNING ` + pairColumns
	p, err := scanPair(tx.QueryRow(ctx, query, inviteCode, userID))
	if err != nil {
		if uniqueConstraint(err) == "pairs_invite_code_key" {
			return models.Pair{}, ErrDuplicate
		}
		if isUniqueViolation(err) {
			return models.Pair{}, ErrAlreadyPaired
		}
		return models.Pair{}, fmt.Errorf("failed to create pair: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO pair_members (user_id, pair_id) VALUES ($1, $2)`, userID, p.ID); err != nil {
		if isUniqueViolation(err) {
			return models.Pair{}, ErrAlreadyPaired
		}
		return models.Pair{}, fmt.Errorf("failed to record pair membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Pair{}, fmt.Errorf("failed to commit pair: %w", err)
	}
	return p, nil
}

// GetByID retrieves a pair by ID
func (r *PGPairRepository) GetByID(ctx context.Context, id int64) (models.Pair, error) {
	query := `SELECT ` + pairColumns + ` FROM pairs WHERE id = $1`
	p, err := scanPair(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Pair{}, ErrNotFound
		}
		return models.Pair{}, fmt.Errorf("failed to get pair: %w", err)
	}
	return p, nil
}

// GetByCode retrieves a pair by invite code
func (r *PGPairRepository) GetByCode(ctx context.Context, inviteCode string) (models.Pair, error) {
	query := `SELECT ` + pairColumns + ` FROM pairs WHERE invite_code = $1`
	p, err := scanPair(r.db.QueryRow(ctx, query, inviteCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Pair{}, ErrNotFound
		}
		return models.Pair{}, fmt.Errorf("failed to get pair by code: %w", err)
	}
	return p, nil
}

// GetByUserID retrieves the pair containing the user as either member
func (r *PGPairRepository) GetByUserID(ctx context.Context, userID int64) (models.Pair, error) {
	query := `SELECT ` + pairColumns + ` FROM pairs WHERE user1_id = $1 OR user2_id = $1 LIMIT 1`
	p, err := scanPair(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Pair{}, ErrNotFound
		}
		return models.Pair{}, fmt.Errorf("failed to get pair by user id: %w", err)
	}
	return p, nil
}

// UserHasPair checks if a user is already in a pair
func (r *PGPairRepository) UserHasPair(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM pairs WHERE user1_id = $1 OR user2_id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check if user has pair: %w", err)
	}
	return exists, nil
}

// Complete sets the second member on an open pair. The user2_id IS NULL guard
// makes the open -> complete transition atomic; a pair that was filled by a
// concurrent join matches no row and returns ErrNotFound. The membership row
// is written in the same transaction, so a joiner who already belongs to
// another pair fails with ErrAlreadyPaired.
func (r *PGPairRepository) Complete(ctx context.Context, pairID, userID int64) (models.Pair, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.Pair{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE pairs
		SET user2_id = $2, is_complete = TRUE, updated_at = now()
		WHERE id = $1 AND user2_id IS NULL AND user1_id <> $2
		RETURNING ` + pairColumns
	p, err := scanPair(tx.QueryRow(ctx, query, pairID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Pair{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return models.Pair{}, ErrAlreadyPaired
		}
		return models.Pair{}, fmt.Errorf("failed to complete pair: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO pair_members (user_id, pair_id) VALUES ($1, $2)`, userID, pairID); err != nil {
		if isUniqueViolation(err) {
			return models.Pair{}, ErrAlreadyPaired
		}
		return models.Pair{}, fmt.Errorf("failed to record pair membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Pair{}, fmt.Errorf("failed to commit pair join: %w", err)
	}
	return p, nil
}
