package services

import (
	"context"
	"errors"
	"testing"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
	"github.com/PlaguesW/Couple-bot-backend/internal/repository"
)

type proposalFixture struct {
	users     *UserService
	pairs     *PairService
	ideas     *IdeaService
	proposals *ProposalService
	stats     *StatsService

	alice models.User
	bob   models.User
	pair  models.Pair
	idea  models.Idea
}

func newProposalFixture(t *testing.T) (*proposalFixture, context.Context) {
	t.Helper()
	ctx := context.Background()

	userRepo := repository.NewMemoryUserRepository()
	pairRepo := repository.NewMemoryPairRepository()
	ideaRepo := repository.NewMemoryIdeaRepository()
	proposalRepo := repository.NewMemoryProposalRepository(userRepo, ideaRepo)

	f := &proposalFixture{
		users:     NewUserService(userRepo, pairRepo),
		pairs:     NewPairService(pairRepo, userRepo),
		ideas:     NewIdeaService(ideaRepo),
		proposals: NewProposalService(proposalRepo, pairRepo, ideaRepo),
		stats:     NewStatsService(proposalRepo, pairRepo),
	}

	f.alice = registerUser(t, f.users, ctx, 1, "Alice")
	f.bob = registerUser(t, f.users, ctx, 2, "Bob")

	pair, err := f.pairs.Create(ctx, f.alice.ID)
	if err != nil {
		t.Fatalf("Create pair failed: %v", err)
	}
	f.pair, err = f.pairs.Join(ctx, f.bob.ID, pair.InviteCode)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	f.idea, err = f.ideas.Create(ctx, models.Idea{
		Title:     "Candlelight dinner",
		Category:  models.CategoryRomantic,
		CostLevel: models.CostLow,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create idea failed: %v", err)
	}
	return f, ctx
}

func TestProposalService_Propose(t *testing.T) {
	f, ctx := newProposalFixture(t)

	t.Run("creates pending proposal from idea", func(t *testing.T) {
		p, err := f.proposals.Propose(ctx, ProposalInput{
			PairID:       f.pair.ID,
			ProposerID:   f.alice.ID,
			IdeaID:       &f.idea.ID,
			ProposedDate: strPtr("2026-09-12"),
			ProposedTime: strPtr("19:30"),
		})
		if err != nil {
			t.Fatalf("Propose failed: %v", err)
		}
		if p.Status != models.ProposalPending {
			t.Errorf("expected pending, got %s", p.Status)
		}
		if p.RespondedAt != nil || p.ResponderID != nil {
			t.Error("fresh proposal must not carry response fields")
		}
	})

	t.Run("creates proposal from custom description", func(t *testing.T) {
		p, err := f.proposals.Propose(ctx, ProposalInput{
			PairID:            f.pair.ID,
			ProposerID:        f.bob.ID,
			CustomDescription: strPtr("Surprise road trip"),
		})
		if err != nil {
			t.Fatalf("Propose failed: %v", err)
		}
		if p.IdeaID != nil {
			t.Error("expected no idea reference")
		}
	})

	t.Run("requires idea or description", func(t *testing.T) {
		_, err := f.proposals.Propose(ctx, ProposalInput{PairID: f.pair.ID, ProposerID: f.alice.ID})
		if !errors.Is(err, ErrInvalidOperation) {
			t.Fatalf("expected ErrInvalidOperation, got %v", err)
		}
	})

	t.Run("unknown pair yields NotFound", func(t *testing.T) {
		_, err := f.proposals.Propose(ctx, ProposalInput{PairID: 999, ProposerID: f.alice.ID, IdeaID: &f.idea.ID})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown idea yields NotFound", func(t *testing.T) {
		badIdea := int64(999)
		_, err := f.proposals.Propose(ctx, ProposalInput{PairID: f.pair.ID, ProposerID: f.alice.ID, IdeaID: &badIdea})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("non-member proposer is Forbidden", func(t *testing.T) {
		carol := registerUser(t, f.users, ctx, 3, "Carol")
		_, err := f.proposals.Propose(ctx, ProposalInput{PairID: f.pair.ID, ProposerID: carol.ID, IdeaID: &f.idea.ID})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		_, err := f.proposals.Propose(ctx, ProposalInput{
			PairID: f.pair.ID, ProposerID: f.alice.ID, IdeaID: &f.idea.ID,
			ProposedDate: strPtr("12.09.2026"),
		})
		if !errors.Is(err, ErrInvalidOperation) {
			t.Fatalf("expected ErrInvalidOperation, got %v", err)
		}
	})
}

func TestProposalService_Respond(t *testing.T) {
	f, ctx := newProposalFixture(t)

	propose := func(t *testing.T) models.Proposal {
		t.Helper()
		p, err := f.proposals.Propose(ctx, ProposalInput{
			PairID: f.pair.ID, ProposerID: f.alice.ID, IdeaID: &f.idea.ID,
		})
		if err != nil {
			t.Fatalf("Propose failed: %v", err)
		}
		return p
	}

	t.Run("partner accepts exactly once", func(t *testing.T) {
		p := propose(t)
		accepted, err := f.proposals.Respond(ctx, p.ID, f.bob.ID, models.ProposalAccepted, strPtr("can't wait"))
		if err != nil {
			t.Fatalf("Respond failed: %v", err)
		}
		if accepted.Status != models.ProposalAccepted {
			t.Errorf("expected accepted, got %s", accepted.Status)
		}
		if accepted.RespondedAt == nil {
			t.Error("responded_at not set")
		}
		if accepted.ResponderID == nil || *accepted.ResponderID != f.bob.ID {
			t.Errorf("responder not recorded: %v", accepted.ResponderID)
		}

		// Second response must fail and keep the first resolution.
		_, err = f.proposals.Respond(ctx, p.ID, f.bob.ID, models.ProposalRejected, nil)
		if !errors.Is(err, ErrInvalidOperation) {
			t.Fatalf("expected ErrInvalidOperation on re-response, got %v", err)
		}
		got, err := f.proposals.GetByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Status != models.ProposalAccepted {
			t.Errorf("first resolution lost: %s", got.Status)
		}
	})

	t.Run("proposer cannot self-respond", func(t *testing.T) {
		p := propose(t)
		_, err := f.proposals.Respond(ctx, p.ID, f.alice.ID, models.ProposalAccepted, nil)
		if !errors.Is(err, ErrInvalidOperation) {
			t.Fatalf("expected ErrInvalidOperation, got %v", err)
		}
		got, _ := f.proposals.GetByID(ctx, p.ID)
		if got.Status != models.ProposalPending {
			t.Errorf("status changed by rejected self-response: %s", got.Status)
		}
	})

	t.Run("non-member responder is Forbidden", func(t *testing.T) {
		p := propose(t)
		carol := registerUser(t, f.users, ctx, 4, "Carol")
		_, err := f.proposals.Respond(ctx, p.ID, carol.ID, models.ProposalRejected, nil)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("rejects pending as a response status", func(t *testing.T) {
		p := propose(t)
		_, err := f.proposals.Respond(ctx, p.ID, f.bob.ID, models.ProposalPending, nil)
		if !errors.Is(err, ErrInvalidOperation) {
			t.Fatalf("expected ErrInvalidOperation, got %v", err)
		}
	})

	t.Run("unknown proposal yields NotFound", func(t *testing.T) {
		_, err := f.proposals.Respond(ctx, 999, f.bob.ID, models.ProposalAccepted, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestProposalService_History(t *testing.T) {
	f, ctx := newProposalFixture(t)

	first, err := f.proposals.Propose(ctx, ProposalInput{PairID: f.pair.ID, ProposerID: f.alice.ID, IdeaID: &f.idea.ID})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	second, err := f.proposals.Propose(ctx, ProposalInput{
		PairID: f.pair.ID, ProposerID: f.bob.ID, CustomDescription: strPtr("Stargazing"),
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	if _, err := f.proposals.Respond(ctx, first.ID, f.bob.ID, models.ProposalAccepted, nil); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	t.Run("newest first with enrichment", func(t *testing.T) {
		history, err := f.proposals.History(ctx, f.pair.ID, "", 0)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("expected 2 proposals, got %d", len(history))
		}
		if history[0].ID != second.ID {
			t.Errorf("expected newest first, got %d", history[0].ID)
		}
		if history[0].ProposerName != "Bob" {
			t.Errorf("expected proposer name Bob, got %q", history[0].ProposerName)
		}
		withIdea := history[1]
		if withIdea.IdeaTitle == nil || *withIdea.IdeaTitle != "Candlelight dinner" {
			t.Errorf("idea enrichment missing: %v", withIdea.IdeaTitle)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		accepted, err := f.proposals.History(ctx, f.pair.ID, models.ProposalAccepted, 0)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(accepted) != 1 || accepted[0].ID != first.ID {
			t.Errorf("expected only the accepted proposal, got %v", accepted)
		}
	})

	t.Run("unknown pair yields NotFound", func(t *testing.T) {
		_, err := f.proposals.History(ctx, 999, "", 0)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestProposalService_ListForUser(t *testing.T) {
	f, ctx := newProposalFixture(t)

	if _, err := f.proposals.Propose(ctx, ProposalInput{PairID: f.pair.ID, ProposerID: f.alice.ID, IdeaID: &f.idea.ID}); err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	t.Run("returns the pair's proposals", func(t *testing.T) {
		list, err := f.proposals.ListForUser(ctx, f.bob.ID, "", 0)
		if err != nil {
			t.Fatalf("ListForUser failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 proposal, got %d", len(list))
		}
	})

	t.Run("status filter excludes settled", func(t *testing.T) {
		list, err := f.proposals.ListForUser(ctx, f.bob.ID, models.ProposalAccepted, 0)
		if err != nil {
			t.Fatalf("ListForUser failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("expected no accepted proposals, got %d", len(list))
		}
	})

	t.Run("limit caps and can raise the page size", func(t *testing.T) {
		for i := 0; i < defaultHistoryLimit+5; i++ {
			if _, err := f.proposals.Propose(ctx, ProposalInput{PairID: f.pair.ID, ProposerID: f.alice.ID, IdeaID: &f.idea.ID}); err != nil {
				t.Fatalf("Propose failed: %v", err)
			}
		}
		list, err := f.proposals.ListForUser(ctx, f.bob.ID, "", 0)
		if err != nil {
			t.Fatalf("ListForUser failed: %v", err)
		}
		if len(list) != defaultHistoryLimit {
			t.Errorf("expected default page of %d, got %d", defaultHistoryLimit, len(list))
		}
		list, err = f.proposals.ListForUser(ctx, f.bob.ID, "", defaultHistoryLimit+6)
		if err != nil {
			t.Fatalf("ListForUser failed: %v", err)
		}
		if len(list) != defaultHistoryLimit+6 {
			t.Errorf("expected all %d proposals, got %d", defaultHistoryLimit+6, len(list))
		}
	})

	t.Run("unpaired user yields NotFound", func(t *testing.T) {
		carol := registerUser(t, f.users, ctx, 5, "Carol")
		_, err := f.proposals.ListForUser(ctx, carol.ID, "", 0)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
