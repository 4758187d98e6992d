package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/buildshare/blueprint-backend/internal/types"
)

func TestPublicBlueprintDeletionAdjustsAllParties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.createUser(t, "author@example.com")
	commenter := env.createUser(t, "commenter@example.com")

	// Author ends up with one public and one private blueprint.
	public := env.createBlueprint(t, &author, types.ExposurePublic, "public work")
	env.createBlueprint(t, &author, types.ExposurePrivate, "private work")
	assertBlueprintCounters(t, env.counters(t, author), 1, 2)

	// The commenter arrives with history elsewhere, then leaves two comments
	// on the public blueprint.
	if err := env.userInfos.ApplyCommentDelta(ctx, nil, commenter, 8, 58); err != nil {
		t.Fatalf("seed commenter history: %v", err)
	}
	if _, err := env.comments.Add(ctx, public.ID, &commenter, "nice"); err != nil {
		t.Fatalf("first comment: %v", err)
	}
	if _, err := env.comments.Add(ctx, public.ID, &commenter, "very nice"); err != nil {
		t.Fatalf("second comment: %v", err)
	}
	assertCommentCounters(t, env.counters(t, commenter), 10, 60)

	if err := env.blueprints.DeleteBlueprint(ctx, public.ID, &author, nil); err != nil {
		t.Fatalf("delete public blueprint: %v", err)
	}

	// Author loses the public blueprint from both counters; the commenter
	// loses exactly the two comments that lived on it.
	assertBlueprintCounters(t, env.counters(t, author), 0, 1)
	assertCommentCounters(t, env.counters(t, commenter), 8, 58)
}

func TestUnlistedDeletionTouchesOnlyPrivateCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.createUser(t, "author@example.com")
	commenter := env.createUser(t, "commenter@example.com")

	unlisted := env.createBlueprint(t, &author, types.ExposureUnlisted, "link only")
	assertBlueprintCounters(t, env.counters(t, author), 0, 1)

	if _, err := env.comments.Add(ctx, unlisted.ID, &commenter, "found it"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	assertCommentCounters(t, env.counters(t, commenter), 0, 1)

	if err := env.blueprints.DeleteBlueprint(ctx, unlisted.ID, &author, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertBlueprintCounters(t, env.counters(t, author), 0, 0)
	assertCommentCounters(t, env.counters(t, commenter), 0, 0)
}

func TestAnonymousActivityLeavesCountersAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reader := env.createUser(t, "reader@example.com")

	bp := env.createBlueprint(t, nil, types.ExposurePublic, "anon work")
	if _, err := env.comments.Add(ctx, bp.ID, nil, "drive-by"); err != nil {
		t.Fatalf("anonymous comment: %v", err)
	}
	if err := env.blueprints.DeleteBlueprint(ctx, bp.ID, nil, []uuid.UUID{bp.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// No registered user was involved, so nothing moved.
	assertBlueprintCounters(t, env.counters(t, reader), 0, 0)
	assertCommentCounters(t, env.counters(t, reader), 0, 0)
}

func TestOwnershipTransferMovesBlueprintCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	previous := env.createUser(t, "previous@example.com")
	next := env.createUser(t, "next@example.com")

	// Previous owner holds exactly one public blueprint.
	if err := env.userInfos.ApplyBlueprintDelta(ctx, nil, previous, 1, 1); err != nil {
		t.Fatalf("seed previous owner: %v", err)
	}

	if err := env.accounting.OnOwnershipClaimed(ctx, nil, &previous, next, types.ExposurePublic); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	assertBlueprintCounters(t, env.counters(t, previous), 0, 0)
	assertBlueprintCounters(t, env.counters(t, next), 1, 1)
}
