package types

import (
	"time"

	"github.com/google/uuid"
)

// BlueprintVersion is one revision of a blueprint. (BlueprintID, Version) is
// unique; version numbers only grow and are never reused after deletion.
type BlueprintVersion struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BlueprintID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_blueprint_version;column:blueprint_id" json:"blueprint_id"`
	Version     int        `gorm:"not null;uniqueIndex:idx_blueprint_version;column:version" json:"version"`
	Reason      string     `gorm:"column:reason" json:"reason"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
}

func (BlueprintVersion) TableName() string { return "blueprints_versions" }
