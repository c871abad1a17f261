package repository

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"studymate/internal/model"
	"studymate/internal/rag"
)

const chunkInsertBatch = 100

// ChunkRepository stores embeddings as JSON text and ranks them in process with cosine
// similarity. It works on any gorm dialect (MySQL, SQLite).
type ChunkRepository struct {
	db *gorm.DB
}

var _ ChunkStore = (*ChunkRepository)(nil)

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) WithTx(tx *gorm.DB) ChunkStore {
	return &ChunkRepository{db: tx}
}

func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentID uint, chunks []model.ChunkInput) error {
	rows, err := buildChunkRows(documentID, chunks)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
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

func (r *ChunkRepository) DeleteDocumentChunks(ctx context.Context, documentID uint) error {
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID uint) ([]model.Chunk, error) {
	var chunks []model.Chunk
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks by document failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Chunk{}).Where("document_id = ?", documentID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chunks by document failed: %w", err)
	}
	return n, nil
}

func (r *ChunkRepository) NearestNeighbors(ctx context.Context, documentID uint, query []float32, topK int) ([]model.ScoredChunk, error) {
	if topK <= 0 {
		return []model.ScoredChunk{}, nil
	}
	chunks, err := r.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	scored := make([]model.ScoredChunk, len(chunks))
	for i := range chunks {
		scored[i] = model.ScoredChunk{
			Chunk: chunks[i],
			Score: rag.CosineSimilarity(query, chunks[i].EmbeddingVector()),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

func buildChunkRows(documentID uint, chunks []model.ChunkInput) ([]model.Chunk, error) {
	rows := make([]model.Chunk, len(chunks))
	for i, c := range chunks {
		if c.Content == "" {
			return nil, fmt.Errorf("chunk %d of document %d is empty", i, documentID)
		}
		rows[i] = model.Chunk{
			DocumentID: documentID,
			ChunkIndex: i,
			Content:    c.Content,
		}
		rows[i].SetEmbedding(c.Embedding)
	}
	return rows, nil
}
