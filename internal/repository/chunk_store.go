package repository

import (
	"context"

	"gorm.io/gorm"

	"studymate/internal/model"
)

// ChunkStore is the single writer of chunk rows. Implementations scope every read to one
// document and replace a document's chunk set inside a transaction so readers never observe a
// partial set.
type ChunkStore interface {
	ReplaceChunks(ctx context.Context, documentID uint, chunks []model.ChunkInput) error
	DeleteDocumentChunks(ctx context.Context, documentID uint) error
	NearestNeighbors(ctx context.Context, documentID uint, query []float32, topK int) ([]model.ScoredChunk, error)
	ListByDocument(ctx context.Context, documentID uint) ([]model.Chunk, error)
	CountByDocument(ctx context.Context, documentID uint) (int64, error)
	WithTx(tx *gorm.DB) ChunkStore
}

// UnitOfWork runs document and chunk writes in one database transaction.
type UnitOfWork struct {
	db     *gorm.DB
	chunks ChunkStore
}

func NewUnitOfWork(db *gorm.DB, chunks ChunkStore) *UnitOfWork {
	return &UnitOfWork{db: db, chunks: chunks}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(docs *DocumentRepository, chunks ChunkStore) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewDocumentRepository(tx), u.chunks.WithTx(tx))
	})
}
