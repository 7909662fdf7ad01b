package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProposalRepository provides date proposal persistence
type ProposalRepository interface {
	Create(ctx context.Context, p models.Proposal) (models.Proposal, error)
	GetByID(ctx context.Context, id int64) (models.Proposal, error)
	Respond(ctx context.Context, id int64, status models.ProposalStatus, responderID int64, note *string) (models.Proposal, error)
	ListByPair(ctx context.Context, pairID int64, status models.ProposalStatus, limit int) ([]models.ProposalDetails, error)
	CountByStatus(ctx context.Context, pairID int64) (models.ProposalCounts, error)
}

// PGProposalRepository implements ProposalRepository with Postgres
type PGProposalRepository struct {
	db *pgxpool.Pool
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db *pgxpool.Pool) *PGProposalRepository {
	return &PGProposalRepository{db: db}
}

// Dates and times of day travel as text ("YYYY-MM-DD", "HH:MM") end to end.
const proposalColumns = `id, pair_id, proposer_id, responder_id, idea_id, custom_description,
	to_char(proposed_date, 'YYYY-MM-DD'), to_char(proposed_time, 'HH24:MI'),
	status, response_note, created_at, responded_at`

func scanProposal(row pgx.Row) (models.Proposal, error) {
	var p models.Proposal
	err := row.Scan(&p.ID, &p.PairID, &p.ProposerID, &p.ResponderID, &p.IdeaID, &p.CustomDescription,
		&p.ProposedDate, &p.ProposedTime, &p.Status, &p.ResponseNote, &p.CreatedAt, &p.RespondedAt)
	return p, err
}

// Create inserts a new pending proposal and returns it
func (r *PGProposalRepository) Create(ctx context.Context, p models.Proposal) (models.Proposal, error) {
	query := `
		INSERT INTO date_proposals (pair_id, proposer_id, idea_id, custom_description, proposed_date, proposed_time, status)
		VALUES ($1, $2, $3, $4, $5::date, $6::time, $7)
		RETURNING ` + proposalColumns
	created, err := scanProposal(r.db.QueryRow(ctx, query,
		p.PairID, p.ProposerID, p.IdeaID, p.CustomDescription, p.ProposedDate, p.ProposedTime, models.ProposalPending))
	if err != nil {
		return models.Proposal{}, fmt.Errorf("failed to create proposal: %w", err)
	}
	return created, nil
}

// GetByID retrieves a proposal by ID
func (r *PGProposalRepository) GetByID(ctx context.Context, id int64) (models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM date_proposals WHERE id = $1`
	p, err := scanProposal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Proposal{}, ErrNotFound
		}
		return models.Proposal{}, fmt.Errorf("failed to get proposal: %w", err)
	}
	return p, nil
}

// Respond settles a pending proposal. The status = 'pending' guard makes the
// transition single-shot; a proposal settled by a concurrent response matches
// no row and returns ErrNotFound.
func (r *PGProposalRepository) Respond(ctx context.Context, id int64, status models.ProposalStatus, responderID int64, note *string) (models.Proposal, error) {
	query := `
		UPDATE date_proposals
		SET status = $2, responder_id = $3, response_note = $4, responded_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + proposalColumns
	p, err := scanProposal(r.db.QueryRow(ctx, query, id, status, responderID, note))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Proposal{}, ErrNotFound
		}
		return models.Proposal{}, fmt.Errorf("failed to respond to proposal: %w", err)
	}
	return p, nil
}

// ListByPair returns the pair's proposals, newest first, enriched with the
// referenced idea and the proposer's name. An empty status means all statuses.
func (r *PGProposalRepository) ListByPair(ctx context.Context, pairID int64, status models.ProposalStatus, limit int) ([]models.ProposalDetails, error) {
	query := `
		SELECT p.id, p.pair_id, p.proposer_id, p.responder_id, p.idea_id, p.custom_description,
		       to_char(p.proposed_date, 'YYYY-MM-DD'), to_char(p.proposed_time, 'HH24:MI'),
		       p.status, p.response_note, p.created_at, p.responded_at,
		       i.title, i.description, u.name
		FROM date_proposals p
		LEFT JOIN ideas i ON i.id = p.idea_id
		JOIN users u ON u.id = p.proposer_id
		WHERE p.pair_id = $1
		  AND ($2 = '' OR p.status = $2)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3`
	rows, err := r.db.Query(ctx, query, pairID, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []models.ProposalDetails
	for rows.Next() {
		var d models.ProposalDetails
		err := rows.Scan(&d.ID, &d.PairID, &d.ProposerID, &d.ResponderID, &d.IdeaID, &d.CustomDescription,
			&d.ProposedDate, &d.ProposedTime, &d.Status, &d.ResponseNote, &d.CreatedAt, &d.RespondedAt,
			&d.IdeaTitle, &d.IdeaDescription, &d.ProposerName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, d)
	}
	return proposals, rows.Err()
}

// CountByStatus aggregates proposal counts for one pair
func (r *PGProposalRepository) CountByStatus(ctx context.Context, pairID int64) (models.ProposalCounts, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'accepted'),
		       COUNT(*) FILTER (WHERE status = 'rejected'),
		       COUNT(*) FILTER (WHERE status = 'pending')
		FROM date_proposals
		WHERE pair_id = $1`
	var c models.ProposalCounts
	err := r.db.QueryRow(ctx, query, pairID).Scan(&c.Total, &c.Accepted, &c.Rejected, &c.Pending)
	if err != nil {
		return models.ProposalCounts{}, fmt.Errorf("failed to count proposals: %w", err)
	}
	return c, nil
}
