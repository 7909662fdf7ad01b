package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
	"github.com/PlaguesW/Couple-bot-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProposalHandler handles date proposal HTTP requests
type ProposalHandler struct {
	proposalService *services.ProposalService
	userService     *services.UserService
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(proposalService *services.ProposalService, userService *services.UserService) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		userService:     userService,
	}
}

// CreateProposalRequest represents the request body for proposing a date
type CreateProposalRequest struct {
	PairID            int64   `json:"pair_id"`
	ProposerID        int64   `json:"proposer_id"`
	IdeaID            *int64  `json:"idea_id,omitempty"`
	CustomDescription *string `json:"custom_description,omitempty"`
	ProposedDate      *string `json:"proposed_date,omitempty"`
	ProposedTime      *string `json:"proposed_time,omitempty"`
}

// RespondProposalRequest represents the request body for settling a proposal
type RespondProposalRequest struct {
	ResponderID  int64   `json:"responder_id"`
	Status       string  `json:"status"`
	ResponseNote *string `json:"response_note,omitempty"`
}

// Create handles POST /api/proposals
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PairID == 0 || req.ProposerID == 0 {
		respondError(w, "pair_id and proposer_id are required", http.StatusBadRequest)
		return
	}

	proposal, err := h.proposalService.Propose(r.Context(), services.ProposalInput{
		PairID:            req.PairID,
		ProposerID:        req.ProposerID,
		IdeaID:            req.IdeaID,
		CustomDescription: req.CustomDescription,
		ProposedDate:      req.ProposedDate,
		ProposedTime:      req.ProposedTime,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	log.Info().
		Int64("proposal_id", proposal.ID).
		Int64("pair_id", proposal.PairID).
		Int64("proposer_id", proposal.ProposerID).
		Msg("Proposal created")

	respondJSON(w, http.StatusCreated, proposal)
}

// Get handles GET /api/proposals/{proposal_id}
func (h *ProposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposal_id")
	if err != nil {
		respondError(w, "proposal_id must be a number", http.StatusBadRequest)
		return
	}

	proposal, err := h.proposalService.GetByID(r.Context(), proposalID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}

// Respond handles PUT /api/proposals/{proposal_id}
func (h *ProposalHandler) Respond(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposal_id")
	if err != nil {
		respondError(w, "proposal_id must be a number", http.StatusBadRequest)
		return
	}

	var req RespondProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ResponderID == 0 {
		respondError(w, "responder_id is required", http.StatusBadRequest)
		return
	}

	proposal, err := h.proposalService.Respond(r.Context(), proposalID, req.ResponderID,
		models.ProposalStatus(req.Status), req.ResponseNote)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	log.Info().
		Int64("proposal_id", proposal.ID).
		Int64("responder_id", req.ResponderID).
		Str("status", string(proposal.Status)).
		Msg("Proposal settled")

	respondJSON(w, http.StatusOK, proposal)
}

// History handles GET /api/proposals/pair/{pair_id}
func (h *ProposalHandler) History(w http.ResponseWriter, r *http.Request) {
	pairID, err := urlParamInt64(r, "pair_id")
	if err != nil {
		respondError(w, "pair_id must be a number", http.StatusBadRequest)
		return
	}

	proposals, err := h.proposalService.History(r.Context(), pairID,
		models.ProposalStatus(r.URL.Query().Get("status")), queryInt(r, "limit"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if proposals == nil {
		proposals = []models.ProposalDetails{}
	}
	respondJSON(w, http.StatusOK, proposals)
}

// ListForUser handles GET /api/proposals/user/{telegram_id}
func (h *ProposalHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	telegramID, err := urlParamInt64(r, "telegram_id")
	if err != nil {
		respondError(w, "telegram_id must be a number", http.StatusBadRequest)
		return
	}

	user, err := h.userService.GetByTelegramID(r.Context(), telegramID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	proposals, err := h.proposalService.ListForUser(r.Context(), user.ID,
		models.ProposalStatus(r.URL.Query().Get("status")), queryInt(r, "limit"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if proposals == nil {
		proposals = []models.ProposalDetails{}
	}
	respondJSON(w, http.StatusOK, proposals)
}
