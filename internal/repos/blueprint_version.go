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

type BlueprintVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, version *types.BlueprintVersion) error
	Get(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID, version int) (*types.BlueprintVersion, error)
	GetByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) ([]*types.BlueprintVersion, error)
	// MaxVersion returns 0 when the blueprint has no version rows.
	MaxVersion(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) (int, error)
	CountByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) (int64, error)
	DeleteByVersion(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID, version int) error
	FullDeleteByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) error
}

type blueprintVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlueprintVersionRepo(db *gorm.DB, baseLog *logger.Logger) BlueprintVersionRepo {
	repoLog := baseLog.With("repo", "BlueprintVersionRepo")
	return &blueprintVersionRepo{db: db, log: repoLog}
}

func (r *blueprintVersionRepo) Create(ctx context.Context, tx *gorm.DB, version *types.BlueprintVersion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(version).Error; err != nil {
		return err
	}
	return nil
}

func (r *blueprintVersionRepo) Get(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID, version int) (*types.BlueprintVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.BlueprintVersion
	if err := transaction.WithContext(ctx).
		Where("blueprint_id = ? AND version = ?", blueprintID, version).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *blueprintVersionRepo) GetByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) ([]*types.BlueprintVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.BlueprintVersion
	if err := transaction.WithContext(ctx).
		Where("blueprint_id = ?", blueprintID).
		Order("version ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *blueprintVersionRepo) MaxVersion(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var max *int
	if err := transaction.WithContext(ctx).
		Model(&types.BlueprintVersion{}).
		Where("blueprint_id = ?", blueprintID).
		Select("MAX(version)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *blueprintVersionRepo) CountByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.BlueprintVersion{}).
		Where("blueprint_id = ?", blueprintID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *blueprintVersionRepo) DeleteByVersion(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID, version int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("blueprint_id = ? AND version = ?", blueprintID, version).
		Delete(&types.BlueprintVersion{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *blueprintVersionRepo) FullDeleteByBlueprintID(ctx context.Context, tx *gorm.DB, blueprintID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Where("blueprint_id = ?", blueprintID).
		Delete(&types.BlueprintVersion{}).Error; err != nil {
		return err
	}
	return nil
}
