package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
	"github.com/PlaguesW/Couple-bot-backend/internal/repository"
	"github.com/PlaguesW/Couple-bot-backend/internal/services"
)

// IdeaHandler handles idea catalog HTTP requests
type IdeaHandler struct {
	ideaService *services.IdeaService
}

// NewIdeaHandler creates a new idea handler
func NewIdeaHandler(ideaService *services.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideaService: ideaService}
}

// CreateIdeaRequest represents the request body for creating an idea
type CreateIdeaRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category"`
	CostLevel   string  `json:"cost_level"`
	Duration    *string `json:"duration,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateIdeaRequest represents the request body for a partial idea update
type UpdateIdeaRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	CostLevel   *string `json:"cost_level,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Create handles POST /api/ideas
func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	idea, err := h.ideaService.Create(r.Context(), models.Idea{
		Title:       req.Title,
		Description: req.Description,
		Category:    models.IdeaCategory(req.Category),
		CostLevel:   models.CostLevel(req.CostLevel),
		Duration:    req.Duration,
		IsActive:    active,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, idea)
}

// List handles GET /api/ideas
func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	activeOnly := true
	if v := q.Get("active_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, "active_only must be a boolean", http.StatusBadRequest)
			return
		}
		activeOnly = b
	}

	ideas, err := h.ideaService.List(r.Context(), repository.IdeaFilter{
		Category:   models.IdeaCategory(q.Get("category")),
		CostLevel:  models.CostLevel(q.Get("cost_level")),
		ActiveOnly: activeOnly,
		Limit:      queryInt(r, "limit"),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if ideas == nil {
		ideas = []models.Idea{}
	}
	respondJSON(w, http.StatusOK, ideas)
}

// Random handles GET /api/ideas/random
func (h *IdeaHandler) Random(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	idea, err := h.ideaService.Random(r.Context(),
		models.IdeaCategory(q.Get("category")),
		models.CostLevel(q.Get("cost_level")))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, idea)
}

// Get handles GET /api/ideas/{idea_id}
func (h *IdeaHandler) Get(w http.ResponseWriter, r *http.Request) {
	ideaID, err := urlParamInt64(r, "idea_id")
	if err != nil {
		respondError(w, "idea_id must be a number", http.StatusBadRequest)
		return
	}

	idea, err := h.ideaService.GetByID(r.Context(), ideaID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, idea)
}

// Update handles PUT /api/ideas/{idea_id}
func (h *IdeaHandler) Update(w http.ResponseWriter, r *http.Request) {
	ideaID, err := urlParamInt64(r, "idea_id")
	if err != nil {
		respondError(w, "idea_id must be a number", http.StatusBadRequest)
		return
	}

	var req UpdateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	upd := repository.IdeaUpdate{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		IsActive:    req.IsActive,
	}
	if req.Category != nil {
		c := models.IdeaCategory(*req.Category)
		upd.Category = &c
	}
	if req.CostLevel != nil {
		c := models.CostLevel(*req.CostLevel)
		upd.CostLevel = &c
	}

	idea, err := h.ideaService.Update(r.Context(), ideaID, upd)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, idea)
}

// Delete handles DELETE /api/ideas/{idea_id}
func (h *IdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ideaID, err := urlParamInt64(r, "idea_id")
	if err != nil {
		respondError(w, "idea_id must be a number", http.StatusBadRequest)
		return
	}

	if err := h.ideaService.Delete(r.Context(), ideaID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
