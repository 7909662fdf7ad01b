package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/PlaguesW/Couple-bot-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
	pairService *services.PairService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, pairService *services.PairService) *UserHandler {
	return &UserHandler{
		userService: userService,
		pairService: pairService,
	}
}

// CreateUserRequest represents the request body for registering a user
type CreateUserRequest struct {
	TelegramID int64   `json:"telegram_id"`
	Name       string  `json:"name"`
	Username   *string `json:"username,omitempty"`
}

// UpdateUserRequest represents the request body for a partial profile update
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Register(r.Context(), req.TelegramID, req.Name, req.Username)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	log.Info().
		Int64("telegram_id", user.TelegramID).
		Int64("user_id", user.ID).
		Msg("User registered")

	respondJSON(w, http.StatusCreated, user)
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{telegram_id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{telegram_id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	telegramID, err := urlParamInt64(r, "telegram_id")
	if err != nil {
		respondError(w, "telegram_id must be a number", http.StatusBadRequest)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Update(r.Context(), telegramID, req.Name, req.Username)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{telegram_id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	telegramID, err := urlParamInt64(r, "telegram_id")
	if err != nil {
		respondError(w, "telegram_id must be a number", http.StatusBadRequest)
		return
	}

	if err := h.userService.Delete(r.Context(), telegramID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	log.Info().Int64("telegram_id", telegramID).Msg("User deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GetPair handles GET /api/users/{telegram_id}/pair
func (h *UserHandler) GetPair(w http.ResponseWriter, r *http.Request) {
	telegramID, err := urlParamInt64(r, "telegram_id")
	if err != nil {
		respondError(w, "telegram_id must be a number", http.StatusBadRequest)
		return
	}

	pair, err := h.pairService.GetByTelegramID(r.Context(), telegramID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pair)
}
