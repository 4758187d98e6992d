package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/buildshare/blueprint-backend/internal/allocator"
	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/blobstore"
	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/repos"
	"github.com/buildshare/blueprint-backend/internal/types"
)

// BlueprintService is the version ledger: the single source of truth for
// blueprint and version metadata, and the only component allowed to touch the
// blob store and the relational rows for the same blueprint.
//
// Cross-store ordering: blobs are written before rows on creation and removed
// before rows on deletion, so a crash between the two steps can leave an
// orphaned blob (cleanable out of band) but never a row pointing at missing
// content.
type BlueprintService interface {
	Create(ctx context.Context, input CreateBlueprintInput) (*types.Blueprint, error)
	AddVersion(ctx context.Context, blueprintID uuid.UUID, content []byte, reason string, requester uuid.UUID) (*types.BlueprintVersion, error)
	DeleteVersion(ctx context.Context, blueprintID uuid.UUID, version int, requester uuid.UUID) error
	DeleteBlueprint(ctx context.Context, blueprintID uuid.UUID, requester *uuid.UUID, claimable []uuid.UUID) error
	ResolveVisible(ctx context.Context, slug string, requestedVersion *int, viewer *uuid.UUID) (*types.Blueprint, error)
	ReadContent(ctx context.Context, slug string, requestedVersion *int, viewer *uuid.UUID) (*types.Blueprint, []byte, error)
}

type CreateBlueprintInput struct {
	AuthorID *uuid.UUID
	// Slug defaults to the allocated file id when empty.
	Slug        string
	Exposure    types.Exposure
	Content     []byte
	Reason      string
	Metadata    datatypes.JSON
	PublishedAt *time.Time
	ExpiresAt   *time.Time
}

// blobDeleteConcurrency bounds parallel unlink calls in DeleteBlueprint.
const blobDeleteConcurrency = 4

type blueprintService struct {
	db          *gorm.DB
	log         *logger.Logger
	alloc       allocator.Allocator
	blobs       blobstore.Store
	bpRepo      repos.BlueprintRepo
	versionRepo repos.BlueprintVersionRepo
	commentRepo repos.CommentRepo
	accounting  AccountingService
}

func NewBlueprintService(
	db *gorm.DB,
	baseLog *logger.Logger,
	alloc allocator.Allocator,
	blobs blobstore.Store,
	bpRepo repos.BlueprintRepo,
	versionRepo repos.BlueprintVersionRepo,
	commentRepo repos.CommentRepo,
	accounting AccountingService,
) BlueprintService {
	serviceLog := baseLog.With("service", "BlueprintService")
	return &blueprintService{
		db:          db,
		log:         serviceLog,
		alloc:       alloc,
		blobs:       blobs,
		bpRepo:      bpRepo,
		versionRepo: versionRepo,
		commentRepo: commentRepo,
		accounting:  accounting,
	}
}

func (bs *blueprintService) Create(ctx context.Context, input CreateBlueprintInput) (*types.Blueprint, error) {
	if !input.Exposure.Valid() {
		return nil, fmt.Errorf("%w: unknown exposure %q", apperr.ErrValidation, input.Exposure)
	}
	if len(input.Content) == 0 {
		return nil, fmt.Errorf("%w: empty content", apperr.ErrValidation)
	}

	fileID, err := bs.alloc.Allocate(ctx)
	if err != nil {
		return nil, err
	}

	slug := input.Slug
	if slug == "" {
		slug = fileID
	}

	// Blob before rows: a crash here leaves an orphaned blob, never a
	// blueprint row whose content is missing.
	if err := bs.blobs.Write(ctx, fileID, bs.blobs.VersionToken(1), input.Content); err != nil {
		return nil, fmt.Errorf("write initial version blob: %w", err)
	}

	now := time.Now()
	publishedAt := input.PublishedAt
	if publishedAt == nil {
		publishedAt = &now
	}
	bp := &types.Blueprint{
		ID:             uuid.New(),
		Slug:           slug,
		FileID:         fileID,
		AuthorID:       input.AuthorID,
		Exposure:       input.Exposure,
		CurrentVersion: 1,
		Metadata:       input.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
		PublishedAt:    publishedAt,
		ExpiresAt:      input.ExpiresAt,
	}
	version := &types.BlueprintVersion{
		ID:          uuid.New(),
		BlueprintID: bp.ID,
		Version:     1,
		Reason:      input.Reason,
		CreatedAt:   now,
		PublishedAt: publishedAt,
	}

	err = bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bs.bpRepo.Create(ctx, tx, bp); err != nil {
			return fmt.Errorf("insert blueprint row: %w", err)
		}
		if err := bs.versionRepo.Create(ctx, tx, version); err != nil {
			return fmt.Errorf("insert version row: %w", err)
		}
		return bs.accounting.OnBlueprintCreated(ctx, tx, bp.AuthorID, bp.Exposure)
	})
	if err != nil {
		// The v1 blob stays behind as an accepted orphan.
		bs.log.Warn("Blueprint row insert failed after blob write", "file_id", fileID, "error", err)
		return nil, err
	}

	bs.log.Info("Blueprint created", "blueprint_id", bp.ID, "file_id", fileID, "exposure", bp.Exposure)
	return bp, nil
}

func (bs *blueprintService) AddVersion(ctx context.Context, blueprintID uuid.UUID, content []byte, reason string, requester uuid.UUID) (*types.BlueprintVersion, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty content", apperr.ErrValidation)
	}
	bp, err := bs.bpRepo.GetByID(ctx, nil, blueprintID)
	if err != nil {
		return nil, err
	}
	if bp.AuthorID == nil || *bp.AuthorID != requester {
		return nil, apperr.ErrNotOwner
	}

	maxVersion, err := bs.versionRepo.MaxVersion(ctx, nil, blueprintID)
	if err != nil {
		return nil, fmt.Errorf("read max version: %w", err)
	}
	next := maxVersion + 1

	if err := bs.blobs.Write(ctx, bp.FileID, bs.blobs.VersionToken(next), content); err != nil {
		return nil, fmt.Errorf("write version blob: %w", err)
	}

	now := time.Now()
	version := &types.BlueprintVersion{
		ID:          uuid.New(),
		BlueprintID: blueprintID,
		Version:     next,
		Reason:      reason,
		CreatedAt:   now,
		PublishedAt: &now,
	}
	err = bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bs.versionRepo.Create(ctx, tx, version); err != nil {
			return fmt.Errorf("insert version row: %w", err)
		}
		return bs.bpRepo.UpdateCurrentVersion(ctx, tx, blueprintID, next)
	})
	if err != nil {
		bs.log.Warn("Version row insert failed after blob write", "file_id", bp.FileID, "version", next, "error", err)
		return nil, err
	}
	return version, nil
}

func (bs *blueprintService) DeleteVersion(ctx context.Context, blueprintID uuid.UUID, version int, requester uuid.UUID) error {
	bp, err := bs.bpRepo.GetByID(ctx, nil, blueprintID)
	if err != nil {
		return err
	}
	if bp.AuthorID == nil || *bp.AuthorID != requester {
		return apperr.ErrNotOwner
	}
	if _, err := bs.versionRepo.Get(ctx, nil, blueprintID, version); err != nil {
		return err
	}

	count, err := bs.versionRepo.CountByBlueprintID(ctx, nil, blueprintID)
	if err != nil {
		return fmt.Errorf("count versions: %w", err)
	}
	if count <= 1 {
		return apperr.ErrLastVersion
	}

	if err := bs.blobs.DeleteVersion(ctx, bp.FileID, bs.blobs.VersionToken(version)); err != nil {
		return fmt.Errorf("delete version blob: %w", err)
	}

	return bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bs.versionRepo.DeleteByVersion(ctx, tx, blueprintID, version); err != nil {
			return fmt.Errorf("delete version row: %w", err)
		}
		if bp.CurrentVersion != version {
			return nil
		}
		// The new current version is the numerically largest remaining one,
		// not the most recently created.
		remaining, err := bs.versionRepo.MaxVersion(ctx, tx, blueprintID)
		if err != nil {
			return fmt.Errorf("read max remaining version: %w", err)
		}
		return bs.bpRepo.UpdateCurrentVersion(ctx, tx, blueprintID, remaining)
	})
}

func (bs *blueprintService) DeleteBlueprint(ctx context.Context, blueprintID uuid.UUID, requester *uuid.UUID, claimable []uuid.UUID) error {
	bp, err := bs.bpRepo.GetByID(ctx, nil, blueprintID)
	if err != nil {
		return err
	}
	if !deleteAuthorized(bp, requester, claimable) {
		return apperr.ErrNotOwner
	}

	versions, err := bs.versionRepo.GetByBlueprintID(ctx, nil, blueprintID)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}
	comments, err := bs.commentRepo.GetByBlueprintID(ctx, nil, blueprintID)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}

	// Blobs first. A crash mid-way strands orphaned blobs but keeps the rows,
	// so the blueprint stays deletable; rows pointing at missing content are
	// tolerated only on this deletion path and only until the retry.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(blobDeleteConcurrency)
	for _, v := range versions {
		version := v
		g.Go(func() error {
			return bs.blobs.DeleteVersion(gctx, bp.FileID, bs.blobs.VersionToken(version.Version))
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("delete version blobs: %w", err)
	}
	if err := bs.blobs.DeleteAll(ctx, bp.FileID); err != nil {
		return fmt.Errorf("prune shard directories: %w", err)
	}

	return bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bs.versionRepo.FullDeleteByBlueprintID(ctx, tx, blueprintID); err != nil {
			return fmt.Errorf("delete version rows: %w", err)
		}
		if err := bs.commentRepo.FullDeleteByBlueprintID(ctx, tx, blueprintID); err != nil {
			return fmt.Errorf("delete comment rows: %w", err)
		}
		if err := bs.bpRepo.FullDeleteByID(ctx, tx, blueprintID); err != nil {
			return fmt.Errorf("delete blueprint row: %w", err)
		}
		if err := bs.accounting.OnBlueprintDeleted(ctx, tx, bp.AuthorID, bp.Exposure); err != nil {
			return err
		}
		for _, c := range comments {
			if err := bs.accounting.OnCommentRemoved(ctx, tx, c.AuthorID, bp.Exposure); err != nil {
				return err
			}
		}
		return nil
	})
}

func (bs *blueprintService) ResolveVisible(ctx context.Context, slug string, requestedVersion *int, viewer *uuid.UUID) (*types.Blueprint, error) {
	bp, err := bs.bpRepo.GetBySlug(ctx, nil, slug)
	if err != nil {
		if err == apperr.ErrNotFound {
			return nil, apperr.ErrNotVisible
		}
		return nil, err
	}

	now := time.Now()
	if bp.PublishedAt == nil || bp.PublishedAt.After(now) {
		return nil, apperr.ErrNotVisible
	}
	if bp.ExpiresAt != nil && bp.ExpiresAt.Before(now) {
		return nil, apperr.ErrNotVisible
	}
	if bp.Exposure == types.ExposurePrivate {
		if bp.AuthorID == nil || viewer == nil || *viewer != *bp.AuthorID {
			return nil, apperr.ErrNotVisible
		}
	}
	if requestedVersion != nil {
		if _, err := bs.versionRepo.Get(ctx, nil, bp.ID, *requestedVersion); err != nil {
			if err == apperr.ErrNotFound {
				return nil, apperr.ErrNotVisible
			}
			return nil, err
		}
	}
	return bp, nil
}

func (bs *blueprintService) ReadContent(ctx context.Context, slug string, requestedVersion *int, viewer *uuid.UUID) (*types.Blueprint, []byte, error) {
	bp, err := bs.ResolveVisible(ctx, slug, requestedVersion, viewer)
	if err != nil {
		return nil, nil, err
	}
	version := bp.CurrentVersion
	if requestedVersion != nil {
		version = *requestedVersion
	}
	content, err := bs.blobs.Read(ctx, bp.FileID, bs.blobs.VersionToken(version))
	if err != nil {
		if err == apperr.ErrNotFound {
			// The ledger says this version exists; a missing blob here is a
			// data-integrity problem, not a routine miss.
			bs.log.Error("Version blob missing for ledger row", "file_id", bp.FileID, "version", version)
		}
		return nil, nil, err
	}
	return bp, content, nil
}

func deleteAuthorized(bp *types.Blueprint, requester *uuid.UUID, claimable []uuid.UUID) bool {
	if bp.AuthorID != nil {
		return requester != nil && *requester == *bp.AuthorID
	}
	for _, id := range claimable {
		if id == bp.ID {
			return true
		}
	}
	return false
}
