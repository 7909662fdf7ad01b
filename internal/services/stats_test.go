package services

import (
	"errors"
	"testing"

	"github.com/PlaguesW/Couple-bot-backend/internal/models"
)

func TestStatsService_ForPair(t *testing.T) {
	f, ctx := newProposalFixture(t)

	t.Run("zero proposals is not an error", func(t *testing.T) {
		stats, err := f.stats.ForPair(ctx, f.pair.ID)
		if err != nil {
			t.Fatalf("ForPair failed: %v", err)
		}
		if stats.Total != 0 || stats.AcceptanceRate != 0 {
			t.Errorf("expected empty stats, got %+v", stats)
		}
	})

	t.Run("counts and rate", func(t *testing.T) {
		proposeAndRespond := func(status models.ProposalStatus) {
			t.Helper()
			p, err := f.proposals.Propose(ctx, ProposalInput{
				PairID: f.pair.ID, ProposerID: f.alice.ID, IdeaID: &f.idea.ID,
			})
			if err != nil {
				t.Fatalf("Propose failed: %v", err)
			}
			if status == models.ProposalPending {
				return
			}
			if _, err := f.proposals.Respond(ctx, p.ID, f.bob.ID, status, nil); err != nil {
				t.Fatalf("Respond failed: %v", err)
			}
		}

		proposeAndRespond(models.ProposalAccepted)
		proposeAndRespond(models.ProposalAccepted)
		proposeAndRespond(models.ProposalRejected)
		proposeAndRespond(models.ProposalPending)

		stats, err := f.stats.ForPair(ctx, f.pair.ID)
		if err != nil {
			t.Fatalf("ForPair failed: %v", err)
		}
		if stats.Total != 4 || stats.Accepted != 2 || stats.Rejected != 1 || stats.Pending != 1 {
			t.Errorf("unexpected counts: %+v", stats.ProposalCounts)
		}
		// 2/4*100 = 50.00
		if stats.AcceptanceRate != 50.0 {
			t.Errorf("expected acceptance rate 50.0, got %v", stats.AcceptanceRate)
		}
	})

	t.Run("rate rounds to 2 decimals", func(t *testing.T) {
		// One more rejection: 2/5*100 = 40; add two more for 2/7*100 = 28.57.
		for i := 0; i < 3; i++ {
			p, err := f.proposals.Propose(ctx, ProposalInput{
				PairID: f.pair.ID, ProposerID: f.alice.ID, IdeaID: &f.idea.ID,
			})
			if err != nil {
				t.Fatalf("Propose failed: %v", err)
			}
			if _, err := f.proposals.Respond(ctx, p.ID, f.bob.ID, models.ProposalRejected, nil); err != nil {
				t.Fatalf("Respond failed: %v", err)
			}
		}
		stats, err := f.stats.ForPair(ctx, f.pair.ID)
		if err != nil {
			t.Fatalf("ForPair failed: %v", err)
		}
		if stats.Total != 7 || stats.AcceptanceRate != 28.57 {
			t.Errorf("expected 28.57 over 7 proposals, got %v over %d", stats.AcceptanceRate, stats.Total)
		}
	})

	t.Run("unknown pair yields NotFound", func(t *testing.T) {
		_, err := f.stats.ForPair(ctx, 999)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
