package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Blueprint is the metadata row for one published snippet. The raw version
// content lives in the blob store under FileID; CurrentVersion points at the
// active BlueprintVersion row. AuthorID is nil while the blueprint is
// anonymous and claimable.
type Blueprint struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Slug           string         `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	FileID         string         `gorm:"uniqueIndex;not null;column:file_id" json:"file_id"`
	AuthorID       *uuid.UUID     `gorm:"type:uuid;index;column:author_id" json:"author_id,omitempty"`
	Exposure       Exposure       `gorm:"type:varchar(16);not null;column:exposure" json:"exposure"`
	CurrentVersion int            `gorm:"not null;column:current_version" json:"current_version"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CommentsCount  int            `gorm:"not null;default:0;column:comments_count" json:"comments_count"`
	CommentsHidden bool           `gorm:"not null;default:false;column:comments_hidden" json:"comments_hidden"`
	CommentsClosed bool           `gorm:"not null;default:false;column:comments_closed" json:"comments_closed"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	PublishedAt    *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`
	ExpiresAt      *time.Time     `gorm:"column:expires_at" json:"expires_at,omitempty"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Blueprint) TableName() string { return "blueprints" }
