package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/types"
)

type BlueprintRepo interface {
	Create(ctx context.Context, tx *gorm.DB, bp *types.Blueprint) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Blueprint, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Blueprint, error)
	// FileIDTaken includes soft-deleted rows so identifiers are never reissued.
	FileIDTaken(ctx context.Context, fileID string) (bool, error)
	UpdateCurrentVersion(ctx context.Context, tx *gorm.DB, id uuid.UUID, version int) error
	// ClaimAuthor sets the author only while the blueprint is still anonymous;
	// reports whether this call won the claim.
	ClaimAuthor(ctx context.Context, tx *gorm.DB, id uuid.UUID, authorID uuid.UUID) (bool, error)
	AddCommentsCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error
	FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type blueprintRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlueprintRepo(db *gorm.DB, baseLog *logger.Logger) BlueprintRepo {
	repoLog := baseLog.With("repo", "BlueprintRepo")
	return &blueprintRepo{db: db, log: repoLog}
}

func (r *blueprintRepo) Create(ctx context.Context, tx *gorm.DB, bp *types.Blueprint) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(bp).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrValidation
		}
		return err
	}
	return nil
}

func (r *blueprintRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Blueprint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Blueprint
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *blueprintRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Blueprint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Blueprint
	if err := transaction.WithContext(ctx).
		Where("slug = ?", slug).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *blueprintRepo) FileIDTaken(ctx context.Context, fileID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Unscoped().
		Model(&types.Blueprint{}).
		Where("file_id = ?", fileID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *blueprintRepo) UpdateCurrentVersion(ctx context.Context, tx *gorm.DB, id uuid.UUID, version int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Blueprint{}).
		Where("id = ?", id).
		UpdateColumn("current_version", version).Error; err != nil {
		return err
	}
	return nil
}

func (r *blueprintRepo) ClaimAuthor(ctx context.Context, tx *gorm.DB, id uuid.UUID, authorID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Blueprint{}).
		Where("id = ? AND author_id IS NULL", id).
		UpdateColumn("author_id", authorID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *blueprintRepo) AddCommentsCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Blueprint{}).
		Where("id = ?", id).
		UpdateColumn("comments_count", gorm.Expr("comments_count + ?", delta)).Error; err != nil {
		return err
	}
	return nil
}

func (r *blueprintRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("id = ?", id).
		Delete(&types.Blueprint{}).Error; err != nil {
		return err
	}
	return nil
}

// isUniqueViolation recognizes unique-index conflicts from both backends:
// pgconn's 23505 on Postgres, the textual error from sqlite.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
