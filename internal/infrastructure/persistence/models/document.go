package models

import (
	"time"

	"github.com/sparkcode/dashboard/internal/domain/document"
)

// DocumentModel is one stored document. Collection paths of sub-collections
// keep their parent path, e.g. "projects/01J.../tasks".
type DocumentModel struct {
	Collection string          `gorm:"type:varchar(255);primaryKey"`
	ID         string          `gorm:"type:varchar(64);primaryKey"`
	Data       document.Fields `gorm:"type:text;not null;serializer:json"`
	CreatedAt  time.Time       `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime:false"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the row to a document snapshot entry.
func (m *DocumentModel) ToDomain() document.Document {
	fields := m.Data
	if fields == nil {
		fields = document.Fields{}
	}
	return document.Document{
		ID:         m.ID,
		Collection: m.Collection,
		Fields:     fields,
		CreateTime: m.CreatedAt,
		UpdateTime: m.UpdatedAt,
	}
}
