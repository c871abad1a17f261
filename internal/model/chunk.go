package model

import (
	"encoding/json"
	"time"
)

// Chunk stores a text segment of a document and its embedding.
// Embedding is stored as JSON array of float32 for portability.
type Chunk struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index:idx_chunks_document_position,priority:1" json:"document_id"`
	ChunkIndex int       `gorm:"not null;index:idx_chunks_document_position,priority:2" json:"chunk_index"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Embedding  string    `gorm:"type:text" json:"-"` // JSON array of float32
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *Chunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *Chunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}

// ChunkInput is a chunk to be written by a chunk store, before positions are assigned.
type ChunkInput struct {
	Content   string
	Embedding []float32
}

// ScoredChunk is a nearest-neighbor hit.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
