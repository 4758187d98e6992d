package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/types"
)

// UserInfoRepo applies relative counter deltas. Deltas compose under any
// interleaving because the addition happens inside the row update itself;
// there is deliberately no way to write an absolute counter value.
type UserInfoRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserInfo, error)
	ApplyBlueprintDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, publicDelta, privateDelta int) error
	ApplyCommentDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, publicDelta, privateDelta int) error
}

type userInfoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserInfoRepo(db *gorm.DB, baseLog *logger.Logger) UserInfoRepo {
	repoLog := baseLog.With("repo", "UserInfoRepo")
	return &userInfoRepo{db: db, log: repoLog}
}

func (r *userInfoRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserInfo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserInfo
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Absent row reads as all-zero counters.
			return &types.UserInfo{UserID: userID}, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *userInfoRepo) ApplyBlueprintDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, publicDelta, privateDelta int) error {
	return r.applyDelta(ctx, tx, userID, "count_public_blueprint", publicDelta, "count_private_blueprint", privateDelta)
}

func (r *userInfoRepo) ApplyCommentDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, publicDelta, privateDelta int) error {
	return r.applyDelta(ctx, tx, userID, "count_public_comment", publicDelta, "count_private_comment", privateDelta)
}

func (r *userInfoRepo) applyDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, publicCol string, publicDelta int, privateCol string, privateDelta int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	row := &types.UserInfo{UserID: userID}
	switch publicCol {
	case "count_public_blueprint":
		row.CountPublicBlueprint = publicDelta
		row.CountPrivateBlueprint = privateDelta
	default:
		row.CountPublicComment = publicDelta
		row.CountPrivateComment = privateDelta
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				publicCol:  gorm.Expr(publicCol+" + ?", publicDelta),
				privateCol: gorm.Expr(privateCol+" + ?", privateDelta),
			}),
		}).
		Create(row).Error; err != nil {
		return err
	}
	return nil
}
