package model

import "time"

// Document is an uploaded file. Rows are immutable; deleting one cascades to its chunks.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	FileName    string    `gorm:"size:256;not null" json:"file_name"`
	StoragePath string    `gorm:"size:512;not null;uniqueIndex" json:"storage_path"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
