package types

import (
	"github.com/google/uuid"
)

// UserInfo carries the denormalized per-user counters shown on profiles.
// The "private" buckets count every live item the user owns or authored; the
// "public" buckets count only items attached to a public-exposure blueprint,
// so private >= public holds for both pairs at all times. Rows are mutated
// exclusively through relative deltas by the accounting service.
type UserInfo struct {
	UserID                uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	CountPublicBlueprint  int       `gorm:"not null;default:0;column:count_public_blueprint" json:"count_public_blueprint"`
	CountPrivateBlueprint int       `gorm:"not null;default:0;column:count_private_blueprint" json:"count_private_blueprint"`
	CountPublicComment    int       `gorm:"not null;default:0;column:count_public_comment" json:"count_public_comment"`
	CountPrivateComment   int       `gorm:"not null;default:0;column:count_private_comment" json:"count_private_comment"`
}

func (UserInfo) TableName() string { return "users_infos" }
