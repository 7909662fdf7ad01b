package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository provides user persistence
type UserRepository interface {
	Create(ctx context.Context, telegramID int64, name string, username *string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, telegramID int64, name, username *string) (models.User, error)
	Delete(ctx context.Context, telegramID int64) error
}

// PGUserRepository implements UserRepository with Postgres
type PGUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *PGUserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, telegram_id, name, username, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.Name, &u.Username, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a new user and returns it
func (r *PGUserRepository) Create(ctx context.Context, telegramID int64, name string, username *string) (models.User, error) {
	query := `
		INSERT INTO users (telegram_id, name, username)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, telegramID, name, username))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by internal id
func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByTelegramID retrieves a user by telegram id
func (r *PGUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user by telegram id: %w", err)
	}
	return u, nil
}

// List returns all users, newest first
func (r *PGUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update applies the non-nil fields and returns the updated user
func (r *PGUserRepository) Update(ctx context.Context, telegramID int64, name, username *string) (models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    username = COALESCE($3, username),
		    updated_at = now()
		WHERE telegram_id = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, telegramID, name, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// Delete removes a user. Fails with ErrRestricted while pairs or proposals
// still reference the user.
func (r *PGUserRepository) Delete(ctx context.Context, telegramID int64) error {
	query := `DELETE FROM users WHERE telegram_id = $1`
	result, err := r.db.Exec(ctx, query, telegramID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrRestricted
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
