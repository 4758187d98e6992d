package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/repos"
)

// ClaimService transfers an anonymously authored blueprint to an
// authenticated user. The claimable list is session state supplied by the
// caller and is advisory only; the checks inside the transaction are
// authoritative, so a stale or forged list can never move ownership.
type ClaimService interface {
	Claim(ctx context.Context, blueprintID uuid.UUID, userID uuid.UUID, claimable []uuid.UUID) error
}

type claimService struct {
	db         *gorm.DB
	log        *logger.Logger
	bpRepo     repos.BlueprintRepo
	userRepo   repos.UserRepo
	accounting AccountingService
}

func NewClaimService(db *gorm.DB, baseLog *logger.Logger, bpRepo repos.BlueprintRepo, userRepo repos.UserRepo, accounting AccountingService) ClaimService {
	serviceLog := baseLog.With("service", "ClaimService")
	return &claimService{
		db:         db,
		log:        serviceLog,
		bpRepo:     bpRepo,
		userRepo:   userRepo,
		accounting: accounting,
	}
}

func (cs *claimService) Claim(ctx context.Context, blueprintID uuid.UUID, userID uuid.UUID, claimable []uuid.UUID) error {
	if userID == uuid.Nil {
		return apperr.ErrInvalidClaim
	}
	exists, err := cs.userRepo.IDExists(ctx, nil, userID)
	if err != nil {
		return fmt.Errorf("check claiming user: %w", err)
	}
	if !exists {
		return apperr.ErrInvalidClaim
	}
	if !containsID(claimable, blueprintID) {
		return apperr.ErrInvalidClaim
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bp, err := cs.bpRepo.GetByID(ctx, tx, blueprintID)
		if err != nil {
			if err == apperr.ErrNotFound {
				return apperr.ErrInvalidClaim
			}
			return err
		}
		// First claim wins: the conditional update only fires while the
		// author column is still NULL.
		won, err := cs.bpRepo.ClaimAuthor(ctx, tx, blueprintID, userID)
		if err != nil {
			return fmt.Errorf("reassign author: %w", err)
		}
		if !won {
			return apperr.ErrInvalidClaim
		}
		return cs.accounting.OnOwnershipClaimed(ctx, tx, nil, userID, bp.Exposure)
	})
	if err != nil {
		return err
	}

	cs.log.Info("Blueprint claimed", "blueprint_id", blueprintID, "user_id", userID)
	return nil
}

func containsID(ids []uuid.UUID, target uuid.UUID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
