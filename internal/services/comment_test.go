package services

import (
	"context"
	"errors"
	"testing"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/types"
)

func TestAddCommentBumpsDenormalizedCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.createUser(t, "author@example.com")
	commenter := env.createUser(t, "commenter@example.com")

	bp := env.createBlueprint(t, &author, types.ExposurePublic, "work")
	if _, err := env.comments.Add(ctx, bp.ID, &commenter, "first"); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	got, err := env.bpRepo.GetByID(ctx, nil, bp.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.CommentsCount != 1 {
		t.Fatalf("want comments_count 1, got %d", got.CommentsCount)
	}
	assertCommentCounters(t, env.counters(t, commenter), 1, 1)
}

func TestAddCommentRejectedWhenClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.createUser(t, "author@example.com")

	bp := env.createBlueprint(t, &author, types.ExposurePublic, "work")
	if err := env.db.Model(&types.Blueprint{}).
		Where("id = ?", bp.ID).
		UpdateColumn("comments_closed", true).Error; err != nil {
		t.Fatalf("close comments: %v", err)
	}

	if _, err := env.comments.Add(ctx, bp.ID, &author, "too late"); !errors.Is(err, apperr.ErrCommentsClosed) {
		t.Fatalf("want ErrCommentsClosed, got %v", err)
	}
}

func TestAddCommentRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author@example.com")
	bp := env.createBlueprint(t, &author, types.ExposurePublic, "work")

	if _, err := env.comments.Add(context.Background(), bp.ID, &author, "   "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestDeleteCommentAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	commenter := env.createUser(t, "commenter@example.com")
	stranger := env.createUser(t, "stranger@example.com")

	bp := env.createBlueprint(t, &owner, types.ExposurePublic, "work")
	first, err := env.comments.Add(ctx, bp.ID, &commenter, "one")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := env.comments.Add(ctx, bp.ID, &commenter, "two")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := env.comments.Delete(ctx, first.ID, stranger); !errors.Is(err, apperr.ErrNotOwner) {
		t.Fatalf("stranger delete: want ErrNotOwner, got %v", err)
	}
	// Comment author may remove their own comment.
	if err := env.comments.Delete(ctx, first.ID, commenter); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	// The blueprint owner may moderate any comment on their blueprint.
	if err := env.comments.Delete(ctx, second.ID, owner); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	got, err := env.bpRepo.GetByID(ctx, nil, bp.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.CommentsCount != 0 {
		t.Fatalf("want comments_count 0, got %d", got.CommentsCount)
	}
	assertCommentCounters(t, env.counters(t, commenter), 0, 0)
}

func TestListCommentsInCreationOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.createUser(t, "author@example.com")

	bp := env.createBlueprint(t, &author, types.ExposurePublic, "work")
	for _, text := range []string{"one", "two", "three"} {
		if _, err := env.comments.Add(ctx, bp.ID, &author, text); err != nil {
			t.Fatalf("add %q: %v", text, err)
		}
	}

	list, err := env.comments.ListByBlueprint(ctx, bp.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("want 3 comments, got %d", len(list))
	}
	for i, want := range []string{"one", "two", "three"} {
		if list[i].Content != want {
			t.Fatalf("comment %d: want=%q got=%q", i, want, list[i].Content)
		}
	}
}
