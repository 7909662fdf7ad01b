package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/PlaguesW/Couple-bot-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PairHandler handles pair-related HTTP requests
type PairHandler struct {
	pairService  *services.PairService
	statsService *services.StatsService
}

// NewPairHandler creates a new pair handler
func NewPairHandler(pairService *services.PairService, statsService *services.StatsService) *PairHandler {
	return &PairHandler{
		pairService:  pairService,
		statsService: statsService,
	}
}

// CreatePairRequest represents the request body for opening a pair
type CreatePairRequest struct {
	UserID int64 `json:"user_id"`
}

// JoinPairRequest represents the request body for joining a pair
type JoinPairRequest struct {
	UserID     int64  `json:"user_id"`
	InviteCode string `json:"invite_code"`
}

// Create handles POST /api/pairs
func (h *PairHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	pair, err := h.pairService.Create(r.Context(), req.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	log.Info().
		Int64("user_id", req.UserID).
		Int64("pair_id", pair.ID).
		Str("invite_code", pair.InviteCode).
		Msg("Pair created")

	respondJSON(w, http.StatusCreated, pair)
}

// Join handles POST /api/pairs/join
func (h *PairHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 || req.InviteCode == "" {
		respondError(w, "user_id and invite_code are required", http.StatusBadRequest)
		return
	}

	pair, err := h.pairService.Join(r.Context(), req.UserID, req.InviteCode)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	log.Info().
		Int64("user_id", req.UserID).
		Int64("pair_id", pair.ID).
		Msg("Pair completed")

	respondJSON(w, http.StatusOK, pair)
}

// Get handles GET /api/pairs/{pair_id}
func (h *PairHandler) Get(w http.ResponseWriter, r *http.Request) {
	pairID, err := urlParamInt64(r, "pair_id")
	if err != nil {
		respondError(w, "pair_id must be a number", http.StatusBadRequest)
		return
	}

	pair, err := h.pairService.GetByID(r.Context(), pairID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pair)
}

// Stats handles GET /api/pairs/{pair_id}/stats
func (h *PairHandler) Stats(w http.ResponseWriter, r *http.Request) {
	pairID, err := urlParamInt64(r, "pair_id")
	if err != nil {
		respondError(w, "pair_id must be a number", http.StatusBadRequest)
		return
	}

	stats, err := h.statsService.ForPair(r.Context(), pairID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
