package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/repos"
	"github.com/buildshare/blueprint-backend/internal/types"
)

// AccountingService keeps the denormalized per-user counters in lock-step
// with blueprint and comment lifecycle events. Every hook applies relative
// deltas through UserInfoRepo inside the caller's transaction; hooks carry no
// deduplication, so BlueprintService, CommentService and ClaimService are the
// only permitted event sources and must fire each hook exactly once per real
// event, after the triggering mutation is part of a succeeding transaction.
type AccountingService interface {
	OnBlueprintCreated(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, exposure types.Exposure) error
	OnBlueprintDeleted(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, exposure types.Exposure) error
	OnCommentAdded(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, blueprintExposure types.Exposure) error
	OnCommentRemoved(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, blueprintExposure types.Exposure) error
	OnOwnershipClaimed(ctx context.Context, tx *gorm.DB, previousAuthorID *uuid.UUID, newAuthorID uuid.UUID, exposure types.Exposure) error
}

type accountingService struct {
	db           *gorm.DB
	log          *logger.Logger
	userInfoRepo repos.UserInfoRepo
}

func NewAccountingService(db *gorm.DB, baseLog *logger.Logger, userInfoRepo repos.UserInfoRepo) AccountingService {
	serviceLog := baseLog.With("service", "AccountingService")
	return &accountingService{
		db:           db,
		log:          serviceLog,
		userInfoRepo: userInfoRepo,
	}
}

func (as *accountingService) OnBlueprintCreated(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, exposure types.Exposure) error {
	return as.blueprintDelta(ctx, tx, authorID, exposure, +1)
}

func (as *accountingService) OnBlueprintDeleted(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, exposure types.Exposure) error {
	return as.blueprintDelta(ctx, tx, authorID, exposure, -1)
}

func (as *accountingService) OnCommentAdded(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, blueprintExposure types.Exposure) error {
	return as.commentDelta(ctx, tx, authorID, blueprintExposure, +1)
}

func (as *accountingService) OnCommentRemoved(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, blueprintExposure types.Exposure) error {
	return as.commentDelta(ctx, tx, authorID, blueprintExposure, -1)
}

// OnOwnershipClaimed moves the blueprint counters from the previous author to
// the new one. Comments are not reattributed. A nil previous author (the
// anonymous case) runs the increment side only.
func (as *accountingService) OnOwnershipClaimed(ctx context.Context, tx *gorm.DB, previousAuthorID *uuid.UUID, newAuthorID uuid.UUID, exposure types.Exposure) error {
	if previousAuthorID != nil {
		if err := as.blueprintDelta(ctx, tx, previousAuthorID, exposure, -1); err != nil {
			return err
		}
	}
	return as.blueprintDelta(ctx, tx, &newAuthorID, exposure, +1)
}

func (as *accountingService) blueprintDelta(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, exposure types.Exposure, sign int) error {
	if authorID == nil {
		return nil
	}
	publicDelta := 0
	if exposure == types.ExposurePublic {
		publicDelta = sign
	}
	if err := as.userInfoRepo.ApplyBlueprintDelta(ctx, tx, *authorID, publicDelta, sign); err != nil {
		as.log.Error("Blueprint counter delta failed", "author_id", authorID, "error", err)
		return fmt.Errorf("apply blueprint counter delta: %w", err)
	}
	return nil
}

func (as *accountingService) commentDelta(ctx context.Context, tx *gorm.DB, authorID *uuid.UUID, blueprintExposure types.Exposure, sign int) error {
	if authorID == nil {
		return nil
	}
	publicDelta := 0
	if blueprintExposure == types.ExposurePublic {
		publicDelta = sign
	}
	if err := as.userInfoRepo.ApplyCommentDelta(ctx, tx, *authorID, publicDelta, sign); err != nil {
		as.log.Error("Comment counter delta failed", "author_id", authorID, "error", err)
		return fmt.Errorf("apply comment counter delta: %w", err)
	}
	return nil
}
