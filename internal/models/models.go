package models

import "time"

// ProposalStatus is the resolution state of a date proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// IsValid reports whether the status is one of the known values.
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalPending, ProposalAccepted, ProposalRejected:
		return true
	}
	return false
}

// IdeaCategory classifies a date idea.
type IdeaCategory string

const (
	CategoryRomantic IdeaCategory = "romantic"
	CategoryHome     IdeaCategory = "home"
	CategoryCultural IdeaCategory = "cultural"
	CategoryActive   IdeaCategory = "active"
	CategoryBudget   IdeaCategory = "budget"
)

// IsValid reports whether the category is one of the known values.
func (c IdeaCategory) IsValid() bool {
	switch c {
	case CategoryRomantic, CategoryHome, CategoryCultural, CategoryActive, CategoryBudget:
		return true
	}
	return false
}

// CostLevel is the rough price bracket of an idea.
type CostLevel string

const (
	CostFree   CostLevel = "free"
	CostLow    CostLevel = "low"
	CostMedium CostLevel = "medium"
	CostHigh   CostLevel = "high"
)

// IsValid reports whether the cost level is one of the known values.
func (c CostLevel) IsValid() bool {
	switch c {
	case CostFree, CostLow, CostMedium, CostHigh:
		return true
	}
	return false
}

// User represents a registered user, keyed externally by telegram id
type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Name       string    `json:"name"`
	Username   *string   `json:"username,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Pair represents a couple. User2ID is nil until someone joins with the
// invite code; IsComplete flips exactly once when that happens.
type Pair struct {
	ID         int64     `json:"id"`
	InviteCode string    `json:"invite_code"`
	User1ID    int64     `json:"user1_id"`
	User2ID    *int64    `json:"user2_id,omitempty"`
	IsComplete bool      `json:"is_complete"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Idea represents a reusable date idea from the catalog
type Idea struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Category    IdeaCategory `json:"category"`
	CostLevel   CostLevel    `json:"cost_level"`
	Duration    *string      `json:"duration,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Proposal represents a pair-scoped date proposal. At least one of IdeaID and
// CustomDescription must be present. ProposedDate is "YYYY-MM-DD" and
// ProposedTime is "HH:MM".
type Proposal struct {
	ID                int64          `json:"id"`
	PairID            int64          `json:"pair_id"`
	ProposerID        int64          `json:"proposer_id"`
	ResponderID       *int64         `json:"responder_id,omitempty"`
	IdeaID            *int64         `json:"idea_id,omitempty"`
	CustomDescription *string        `json:"custom_description,omitempty"`
	ProposedDate      *string        `json:"proposed_date,omitempty"`
	ProposedTime      *string        `json:"proposed_time,omitempty"`
	Status            ProposalStatus `json:"status"`
	ResponseNote      *string        `json:"response_note,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	RespondedAt       *time.Time     `json:"responded_at,omitempty"`
}

// ProposalDetails is a proposal enriched with the referenced idea and the
// proposer's display name, used for pair history.
type ProposalDetails struct {
	Proposal
	IdeaTitle       *string `json:"idea_title,omitempty"`
	IdeaDescription *string `json:"idea_description,omitempty"`
	ProposerName    string  `json:"proposer_name"`
}

// ProposalCounts holds per-status proposal counts for one pair.
type ProposalCounts struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

// PairStats is the aggregated proposal statistics for a pair.
type PairStats struct {
	PairID int64 `json:"pair_id"`
	ProposalCounts
	AcceptanceRate float64 `json:"acceptance_rate"`
}
