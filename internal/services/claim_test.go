package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/types"
)

func TestClaimAnonymousBlueprint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	claimant := env.createUser(t, "claimant@example.com")

	bp := env.createBlueprint(t, nil, types.ExposurePublic, "anon work")
	assertBlueprintCounters(t, env.counters(t, claimant), 0, 0)

	if err := env.claims.Claim(ctx, bp.ID, claimant, []uuid.UUID{bp.ID}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	got, err := env.bpRepo.GetByID(ctx, nil, bp.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.AuthorID == nil || *got.AuthorID != claimant {
		t.Fatalf("author not transferred: %v", got.AuthorID)
	}
	assertBlueprintCounters(t, env.counters(t, claimant), 1, 1)
}

func TestSecondClaimLoses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.createUser(t, "first@example.com")
	second := env.createUser(t, "second@example.com")

	bp := env.createBlueprint(t, nil, types.ExposurePublic, "anon work")
	claimable := []uuid.UUID{bp.ID}

	if err := env.claims.Claim(ctx, bp.ID, first, claimable); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := env.claims.Claim(ctx, bp.ID, second, claimable); !errors.Is(err, apperr.ErrInvalidClaim) {
		t.Fatalf("second claim: want ErrInvalidClaim, got %v", err)
	}

	// The loser's counters stay untouched; the winner keeps the blueprint.
	assertBlueprintCounters(t, env.counters(t, first), 1, 1)
	assertBlueprintCounters(t, env.counters(t, second), 0, 0)
	got, err := env.bpRepo.GetByID(ctx, nil, bp.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.AuthorID == nil || *got.AuthorID != first {
		t.Fatalf("ownership changed after losing claim: %v", got.AuthorID)
	}
}

func TestClaimRequiresListedBlueprint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	claimant := env.createUser(t, "claimant@example.com")

	bp := env.createBlueprint(t, nil, types.ExposurePublic, "anon work")

	if err := env.claims.Claim(ctx, bp.ID, claimant, nil); !errors.Is(err, apperr.ErrInvalidClaim) {
		t.Fatalf("empty list: want ErrInvalidClaim, got %v", err)
	}
	if err := env.claims.Claim(ctx, bp.ID, claimant, []uuid.UUID{uuid.New()}); !errors.Is(err, apperr.ErrInvalidClaim) {
		t.Fatalf("foreign list: want ErrInvalidClaim, got %v", err)
	}
}

func TestClaimRejectsUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bp := env.createBlueprint(t, nil, types.ExposurePublic, "anon work")
	claimable := []uuid.UUID{bp.ID}

	if err := env.claims.Claim(ctx, bp.ID, uuid.Nil, claimable); !errors.Is(err, apperr.ErrInvalidClaim) {
		t.Fatalf("nil user: want ErrInvalidClaim, got %v", err)
	}
	if err := env.claims.Claim(ctx, bp.ID, uuid.New(), claimable); !errors.Is(err, apperr.ErrInvalidClaim) {
		t.Fatalf("unregistered user: want ErrInvalidClaim, got %v", err)
	}
}

func TestClaimRejectsMissingBlueprint(t *testing.T) {
	env := newTestEnv(t)
	claimant := env.createUser(t, "claimant@example.com")
	ghost := uuid.New()

	err := env.claims.Claim(context.Background(), ghost, claimant, []uuid.UUID{ghost})
	if !errors.Is(err, apperr.ErrInvalidClaim) {
		t.Fatalf("want ErrInvalidClaim, got %v", err)
	}
}
