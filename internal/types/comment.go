package types

import (
	"time"

	"github.com/google/uuid"
)

// Comment lives and dies with its blueprint; AuthorID is nil for anonymous
// commenters, in which case no counters are touched for it.
type Comment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BlueprintID uuid.UUID  `gorm:"type:uuid;not null;index;column:blueprint_id" json:"blueprint_id"`
	AuthorID    *uuid.UUID `gorm:"type:uuid;index;column:author_id" json:"author_id,omitempty"`
	Content     string     `gorm:"not null;column:content" json:"content"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }
