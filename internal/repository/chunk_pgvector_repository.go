package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"studymate/internal/model"
)

// pgChunk mirrors model.Chunk with a native pgvector column.
type pgChunk struct {
	ID         uint            `gorm:"primaryKey"`
	DocumentID uint            `gorm:"not null;index:idx_chunks_document_position,priority:1"`
	ChunkIndex int             `gorm:"not null;index:idx_chunks_document_position,priority:2"`
	Content    string          `gorm:"type:text;not null"`
	Embedding  pgvector.Vector `gorm:"type:vector"`
	CreatedAt  time.Time
}

func (pgChunk) TableName() string { return "chunks" }

func (c pgChunk) toModel() model.Chunk {
	out := model.Chunk{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
	out.SetEmbedding(c.Embedding.Slice())
	return out
}

// PGVectorChunkRepository ranks chunks inside PostgreSQL with the pgvector cosine distance
// operator.
type PGVectorChunkRepository struct {
	db *gorm.DB
}

var _ ChunkStore = (*PGVectorChunkRepository)(nil)

func NewPGVectorChunkRepository(db *gorm.DB) *PGVectorChunkRepository {
	return &PGVectorChunkRepository{db: db}
}

// MigratePGVector enables the vector extension and creates the chunks table.
func MigratePGVector(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension failed: %w", err)
	}
	if err := db.AutoMigrate(&pgChunk{}); err != nil {
		return fmt.Errorf("auto migrate chunks failed: %w", err)
	}
	return nil
}

func (r *PGVectorChunkRepository) WithTx(tx *gorm.DB) ChunkStore {
	return &PGVectorChunkRepository{db: tx}
}

func (r *PGVectorChunkRepository) ReplaceChunks(ctx context.Context, documentID uint, chunks []model.ChunkInput) error {
	rows := make([]pgChunk, len(chunks))
	for i, c := range chunks {
		if c.Content == "" {
			return fmt.Errorf("chunk %d of document %d is empty", i, documentID)
		}
		rows[i] = pgChunk{
			DocumentID: documentID,
			ChunkIndex: i,
			Content:    c.Content,
			Embedding:  pgvector.NewVector(c.Embedding),
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&pgChunk{}).Error; err != nil {
			return fmt.Errorf("delete chunks by document failed: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, chunkInsertBatch).Error; err != nil {
			return fmt.Errorf("create chunks batch failed: %w", err)
		}
		return nil
	})
}

func (r *PGVectorChunkRepository) DeleteDocumentChunks(ctx context.Context, documentID uint) error {
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&pgChunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}

func (r *PGVectorChunkRepository) ListByDocument(ctx context.Context, documentID uint) ([]model.Chunk, error) {
	var rows []pgChunk
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list chunks by document failed: %w", err)
	}
	chunks := make([]model.Chunk, len(rows))
	for i := range rows {
		chunks[i] = rows[i].toModel()
	}
	return chunks, nil
}

func (r *PGVectorChunkRepository) CountByDocument(ctx context.Context, documentID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&pgChunk{}).Where("document_id = ?", documentID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chunks by document failed: %w", err)
	}
	return n, nil
}

const nearestNeighborsSQL = `
SELECT id, document_id, chunk_index, content, created_at, 1 - (embedding <=> ?) AS score
FROM chunks
WHERE document_id = ?
ORDER BY embedding <=> ? ASC, chunk_index ASC
LIMIT ?`

func (r *PGVectorChunkRepository) NearestNeighbors(ctx context.Context, documentID uint, query []float32, topK int) ([]model.ScoredChunk, error) {
	if topK <= 0 {
		return []model.ScoredChunk{}, nil
	}
	vec := pgvector.NewVector(query)

	var rows []struct {
		ID         uint
		DocumentID uint
		ChunkIndex int
		Content    string
		CreatedAt  time.Time
		Score      float64
	}
	if err := r.db.WithContext(ctx).Raw(nearestNeighborsSQL, vec, documentID, vec, topK).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("search chunks failed: %w", err)
	}

	out := make([]model.ScoredChunk, len(rows))
	for i, row := range rows {
		out[i] = model.ScoredChunk{
			Chunk: model.Chunk{
				ID:         row.ID,
				DocumentID: row.DocumentID,
				ChunkIndex: row.ChunkIndex,
				Content:    row.Content,
				CreatedAt:  row.CreatedAt,
			},
			Score: row.Score,
		}
	}
	return out, nil
}
