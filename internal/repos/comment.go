package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/types"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comment *types.Comment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Comment, error)
	GetByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) ([]*types.Comment, error)
	FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	FullDeleteByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) error
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	repoLog := baseLog.With("repo", "CommentRepo")
	return &commentRepo{db: db, log: repoLog}
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, comment *types.Comment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Comment
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

func (r *commentRepo) GetByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Comment
	if err := transaction.WithContext(ctx).
		Where("blueprint_id = ?", blueprintID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *commentRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Comment{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *commentRepo) FullDeleteByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("blueprint_id = ?", blueprintID).
		Delete(&types.Comment{}).Error; err != nil {
		return err
	}
	return nil
}
