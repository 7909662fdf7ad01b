package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PlaguesW/Couple-bot-backend/internal/middleware"
	"github.com/PlaguesW/Couple-bot-backend/internal/models"
	"github.com/PlaguesW/Couple-bot-backend/internal/repository"
	"github.com/PlaguesW/Couple-bot-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

const testToken = "test-token"

// newTestRouter wires the full API over in-memory repositories, mirroring the
// route table in cmd.
func newTestRouter() http.Handler {
	userRepo := repository.NewMemoryUserRepository()
	pairRepo := repository.NewMemoryPairRepository()
	ideaRepo := repository.NewMemoryIdeaRepository()
	proposalRepo := repository.NewMemoryProposalRepository(userRepo, ideaRepo)

	userService := services.NewUserService(userRepo, pairRepo)
	pairService := services.NewPairService(pairRepo, userRepo)
	ideaService := services.NewIdeaService(ideaRepo)
	proposalService := services.NewProposalService(proposalRepo, pairRepo, ideaRepo)
	statsService := services.NewStatsService(proposalRepo, pairRepo)

	userHandler := NewUserHandler(userService, pairService)
	pairHandler := NewPairHandler(pairService, statsService)
	ideaHandler := NewIdeaHandler(ideaService)
	proposalHandler := NewProposalHandler(proposalService, userService)
	healthHandler := NewHealthHandler(nil)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Check)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(testToken))

			r.Route("/users", func(r chi.Router) {
				r.Post("/", userHandler.Create)
				r.Get("/", userHandler.List)
				r.Get("/{telegram_id}", userHandler.Get)
				r.Put("/{telegram_id}", userHandler.Update)
				r.Delete("/{telegram_id}", userHandler.Delete)
				r.Get("/{telegram_id}/pair", userHandler.GetPair)
			})
			r.Route("/pairs", func(r chi.Router) {
				r.Post("/", pairHandler.Create)
				r.Post("/join", pairHandler.Join)
				r.Get("/{pair_id}", pairHandler.Get)
				r.Get("/{pair_id}/stats", pairHandler.Stats)
			})
			r.Route("/ideas", func(r chi.Router) {
				r.Post("/", ideaHandler.Create)
				r.Get("/", ideaHandler.List)
				r.Get("/random", ideaHandler.Random)
				r.Get("/{idea_id}", ideaHandler.Get)
				r.Put("/{idea_id}", ideaHandler.Update)
				r.Delete("/{idea_id}", ideaHandler.Delete)
			})
			r.Route("/proposals", func(r chi.Router) {
				r.Post("/", proposalHandler.Create)
				r.Get("/{proposal_id}", proposalHandler.Get)
				r.Put("/{proposal_id}", proposalHandler.Respond)
				r.Get("/pair/{pair_id}", proposalHandler.History)
				r.Get("/user/{telegram_id}", proposalHandler.ListForUser)
			})
		})
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestAPI_AuthRequired(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}

	// Health stays public.
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for health, got %d", rec.Code)
	}
}

func TestAPI_FullLifecycle(t *testing.T) {
	router := newTestRouter()

	// Register both partners.
	var alice, bob models.User
	if code := doJSON(t, router, http.MethodPost, "/api/users", CreateUserRequest{TelegramID: 1, Name: "Alice"}, &alice); code != http.StatusCreated {
		t.Fatalf("register alice: expected 201, got %d", code)
	}
	if code := doJSON(t, router, http.MethodPost, "/api/users", CreateUserRequest{TelegramID: 2, Name: "Bob"}, &bob); code != http.StatusCreated {
		t.Fatalf("register bob: expected 201, got %d", code)
	}

	var errResp ErrorResponse
	if code := doJSON(t, router, http.MethodPost, "/api/users", CreateUserRequest{TelegramID: 1, Name: "Alice again"}, &errResp); code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", code)
	}

	// Alice opens a pair, Bob joins with the invite code.
	var pair models.Pair
	if code := doJSON(t, router, http.MethodPost, "/api/pairs", CreatePairRequest{UserID: alice.ID}, &pair); code != http.StatusCreated {
		t.Fatalf("create pair: expected 201, got %d", code)
	}
	var joined models.Pair
	if code := doJSON(t, router, http.MethodPost, "/api/pairs/join", JoinPairRequest{UserID: bob.ID, InviteCode: pair.InviteCode}, &joined); code != http.StatusOK {
		t.Fatalf("join pair: expected 200, got %d", code)
	}
	if !joined.IsComplete || joined.User2ID == nil || *joined.User2ID != bob.ID {
		t.Fatalf("pair not completed by join: %+v", joined)
	}

	// Pair is resolvable through either member.
	var got models.Pair
	if code := doJSON(t, router, http.MethodGet, "/api/users/2/pair", nil, &got); code != http.StatusOK || got.ID != pair.ID {
		t.Fatalf("get pair via bob: code %d, pair %+v", code, got)
	}

	// Catalog an idea and propose it.
	var idea models.Idea
	ideaReq := CreateIdeaRequest{Title: "Candlelight dinner", Category: "romantic", CostLevel: "low"}
	if code := doJSON(t, router, http.MethodPost, "/api/ideas", ideaReq, &idea); code != http.StatusCreated {
		t.Fatalf("create idea: expected 201, got %d", code)
	}

	var proposal models.Proposal
	proposeReq := CreateProposalRequest{PairID: pair.ID, ProposerID: alice.ID, IdeaID: &idea.ID}
	if code := doJSON(t, router, http.MethodPost, "/api/proposals", proposeReq, &proposal); code != http.StatusCreated {
		t.Fatalf("propose: expected 201, got %d", code)
	}
	if proposal.Status != models.ProposalPending {
		t.Fatalf("expected pending proposal, got %s", proposal.Status)
	}

	// Alice cannot respond to her own proposal.
	selfRespond := RespondProposalRequest{ResponderID: alice.ID, Status: "accepted"}
	if code := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/proposals/%d", proposal.ID), selfRespond, &errResp); code != http.StatusBadRequest {
		t.Fatalf("self-response: expected 400, got %d", code)
	}

	// Bob accepts.
	var accepted models.Proposal
	respondReq := RespondProposalRequest{ResponderID: bob.ID, Status: "accepted"}
	if code := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/proposals/%d", proposal.ID), respondReq, &accepted); code != http.StatusOK {
		t.Fatalf("respond: expected 200, got %d", code)
	}
	if accepted.Status != models.ProposalAccepted || accepted.RespondedAt == nil {
		t.Fatalf("proposal not settled: %+v", accepted)
	}

	// Re-responding fails.
	if code := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/proposals/%d", proposal.ID), respondReq, &errResp); code != http.StatusBadRequest {
		t.Fatalf("double response: expected 400, got %d", code)
	}

	// History carries the enrichment.
	var history []models.ProposalDetails
	if code := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/proposals/pair/%d", pair.ID), nil, &history); code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", code)
	}
	if len(history) != 1 || history[0].ProposerName != "Alice" {
		t.Fatalf("unexpected history: %+v", history)
	}
	if history[0].IdeaTitle == nil || *history[0].IdeaTitle != idea.Title {
		t.Fatalf("history missing idea enrichment: %+v", history[0])
	}

	// Stats for one accepted proposal.
	var stats models.PairStats
	if code := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/pairs/%d/stats", pair.ID), nil, &stats); code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", code)
	}
	if stats.Total != 1 || stats.Accepted != 1 || stats.Rejected != 0 || stats.Pending != 0 {
		t.Fatalf("unexpected counts: %+v", stats.ProposalCounts)
	}
	if stats.AcceptanceRate != 100.0 {
		t.Fatalf("expected acceptance rate 100.0, got %v", stats.AcceptanceRate)
	}
}

func TestAPI_IdeaFilters(t *testing.T) {
	router := newTestRouter()

	create := func(title, category, cost string) {
		t.Helper()
		req := CreateIdeaRequest{Title: title, Category: category, CostLevel: cost}
		if code := doJSON(t, router, http.MethodPost, "/api/ideas", req, nil); code != http.StatusCreated {
			t.Fatalf("create idea %s: expected 201, got %d", title, code)
		}
	}
	create("Movie night", "home", "free")
	create("Board games", "home", "free")
	create("Cooking class", "home", "medium")
	create("Candlelight dinner", "romantic", "low")
	create("Dance night", "romantic", "free")

	var ideas []models.Idea
	if code := doJSON(t, router, http.MethodGet, "/api/ideas?category=home", nil, &ideas); code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", code)
	}
	if len(ideas) != 3 {
		t.Fatalf("expected 3 home ideas, got %d", len(ideas))
	}
	if ideas[0].Title != "Cooking class" {
		t.Errorf("expected newest first, got %s", ideas[0].Title)
	}

	var errResp ErrorResponse
	if code := doJSON(t, router, http.MethodGet, "/api/ideas?category=nope", nil, &errResp); code != http.StatusBadRequest {
		t.Fatalf("bad category: expected 400, got %d", code)
	}

	var random models.Idea
	if code := doJSON(t, router, http.MethodGet, "/api/ideas/random?category=romantic&cost_level=free", nil, &random); code != http.StatusOK {
		t.Fatalf("random: expected 200, got %d", code)
	}
	if random.Title != "Dance night" {
		t.Errorf("expected the only free romantic idea, got %s", random.Title)
	}

	if code := doJSON(t, router, http.MethodGet, "/api/ideas/random?category=budget", nil, &errResp); code != http.StatusNotFound {
		t.Fatalf("random with no match: expected 404, got %d", code)
	}

	// Soft-deleted ideas resurface only when active_only is disabled, in any
	// boolean spelling.
	if code := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/ideas/%d", ideas[2].ID), nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete idea: expected 204, got %d", code)
	}
	if code := doJSON(t, router, http.MethodGet, "/api/ideas?category=home", nil, &ideas); code != http.StatusOK || len(ideas) != 2 {
		t.Fatalf("expected 2 active home ideas, code %d, got %d", code, len(ideas))
	}
	if code := doJSON(t, router, http.MethodGet, "/api/ideas?category=home&active_only=0", nil, &ideas); code != http.StatusOK || len(ideas) != 3 {
		t.Fatalf("expected 3 home ideas with active_only=0, code %d, got %d", code, len(ideas))
	}
	if code := doJSON(t, router, http.MethodGet, "/api/ideas?active_only=nope", nil, &errResp); code != http.StatusBadRequest {
		t.Fatalf("garbage active_only: expected 400, got %d", code)
	}
}
