package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/repos"
	"github.com/buildshare/blueprint-backend/internal/types"
)

// CommentService owns single-comment lifecycle and is one of the accounting
// ledger's event sources. Whole-blueprint comment teardown happens in
// BlueprintService.DeleteBlueprint instead.
type CommentService interface {
	Add(ctx context.Context, blueprintID uuid.UUID, authorID *uuid.UUID, content string) (*types.Comment, error)
	Delete(ctx context.Context, commentID uuid.UUID, requester uuid.UUID) error
	ListByBlueprint(ctx context.Context, blueprintID uuid.UUID) ([]*types.Comment, error)
}

type commentService struct {
	db          *gorm.DB
	log         *logger.Logger
	bpRepo      repos.BlueprintRepo
	commentRepo repos.CommentRepo
	accounting  AccountingService
}

func NewCommentService(db *gorm.DB, baseLog *logger.Logger, bpRepo repos.BlueprintRepo, commentRepo repos.CommentRepo, accounting AccountingService) CommentService {
	serviceLog := baseLog.With("service", "CommentService")
	return &commentService{
		db:          db,
		log:         serviceLog,
		bpRepo:      bpRepo,
		commentRepo: commentRepo,
		accounting:  accounting,
	}
}

func (cs *commentService) Add(ctx context.Context, blueprintID uuid.UUID, authorID *uuid.UUID, content string) (*types.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty comment", apperr.ErrValidation)
	}
	bp, err := cs.bpRepo.GetByID(ctx, nil, blueprintID)
	if err != nil {
		return nil, err
	}
	if bp.CommentsClosed {
		return nil, apperr.ErrCommentsClosed
	}

	comment := &types.Comment{
		ID:          uuid.New(),
		BlueprintID: blueprintID,
		AuthorID:    authorID,
		Content:     content,
		CreatedAt:   time.Now(),
	}
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.commentRepo.Create(ctx, tx, comment); err != nil {
			return fmt.Errorf("insert comment row: %w", err)
		}
		if err := cs.bpRepo.AddCommentsCount(ctx, tx, blueprintID, +1); err != nil {
			return fmt.Errorf("bump comments count: %w", err)
		}
		return cs.accounting.OnCommentAdded(ctx, tx, authorID, bp.Exposure)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (cs *commentService) Delete(ctx context.Context, commentID uuid.UUID, requester uuid.UUID) error {
	comment, err := cs.commentRepo.GetByID(ctx, nil, commentID)
	if err != nil {
		return err
	}
	bp, err := cs.bpRepo.GetByID(ctx, nil, comment.BlueprintID)
	if err != nil {
		return err
	}

	isCommentAuthor := comment.AuthorID != nil && *comment.AuthorID == requester
	isBlueprintOwner := bp.AuthorID != nil && *bp.AuthorID == requester
	if !isCommentAuthor && !isBlueprintOwner {
		return apperr.ErrNotOwner
	}

	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.commentRepo.FullDeleteByID(ctx, tx, commentID); err != nil {
			return fmt.Errorf("delete comment row: %w", err)
		}
		if err := cs.bpRepo.AddCommentsCount(ctx, tx, comment.BlueprintID, -1); err != nil {
			return fmt.Errorf("drop comments count: %w", err)
		}
		return cs.accounting.OnCommentRemoved(ctx, tx, comment.AuthorID, bp.Exposure)
	})
}

func (cs *commentService) ListByBlueprint(ctx context.Context, blueprintID uuid.UUID) ([]*types.Comment, error) {
	return cs.commentRepo.GetByBlueprintID(ctx, nil, blueprintID)
}
