package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"studymate/internal/blob"
	"studymate/internal/model"
	"studymate/internal/rag"
	"studymate/internal/repository"
)

const defaultContentType = "application/pdf"

type TextExtractor interface {
	Extract(data []byte) (string, error)
}

type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (*blob.Object, error)
	Delete(ctx context.Context, key string) error
}

// SummaryInvalidator drops cached summaries once a document's chunks change.
type SummaryInvalidator interface {
	Delete(ctx context.Context, documentID uint) error
}

type DocumentServiceConfig struct {
	ChunkSize      int
	MaxUploadBytes int64
	Embed          rag.EmbedOptions
}

type DocumentService struct {
	docs      *repository.DocumentRepository
	chunks    repository.ChunkStore
	uow       *repository.UnitOfWork
	blobs     BlobStore
	extractor TextExtractor
	embedder  rag.Embedder
	summaries SummaryInvalidator
	activity  ActivityLogger
	cfg       DocumentServiceConfig
}

func NewDocumentService(
	docs *repository.DocumentRepository,
	chunks repository.ChunkStore,
	uow *repository.UnitOfWork,
	blobs BlobStore,
	extractor TextExtractor,
	embedder rag.Embedder,
	summaries SummaryInvalidator,
	activity ActivityLogger,
	cfg DocumentServiceConfig,
) *DocumentService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = rag.DefaultChunkSize
	}
	return &DocumentService{
		docs:      docs,
		chunks:    chunks,
		uow:       uow,
		blobs:     blobs,
		extractor: extractor,
		embedder:  embedder,
		summaries: summaries,
		activity:  activity,
		cfg:       cfg,
	}
}

// UploadInput is one uploaded file.
type UploadInput struct {
	FileName    string
	Title       string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	Document model.Document `json:"document"`
	Chunks   int            `json:"chunks"`
}

// Upload extracts, chunks and embeds the file, stores the blob, then inserts the document and its
// chunks in one transaction. The blob is removed again when the transaction fails.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	fileName := strings.TrimSpace(filepath.Base(input.FileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if len(input.Data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(input.Data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, s.cfg.MaxUploadBytes)
	}

	inputs, err := s.prepareChunks(ctx, input.Data)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = fileName
	}
	doc := &model.Document{
		Title:       title,
		FileName:    fileName,
		StoragePath: storagePath(fileName),
		ContentType: contentTypeOf(fileName, input.ContentType),
		SizeBytes:   int64(len(input.Data)),
	}

	if err := s.blobs.Put(ctx, doc.StoragePath, input.Data, doc.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	err = s.uow.Do(ctx, func(docs *repository.DocumentRepository, chunks repository.ChunkStore) error {
		if err := docs.Create(ctx, doc); err != nil {
			return err
		}
		return chunks.ReplaceChunks(ctx, doc.ID, inputs)
	})
	if err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), doc.StoragePath); delErr != nil {
			log.Printf("remove orphan blob %s failed: %v", doc.StoragePath, delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.activity.Record(model.ActionUpload, fmt.Sprintf("Uploaded %s", doc.Title))
	return &UploadResult{Document: *doc, Chunks: len(inputs)}, nil
}

func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

func (s *DocumentService) Get(ctx context.Context, id uint) (*model.Document, error) {
	return loadDocument(ctx, s.docs, id)
}

// Open returns the stored bytes of a document.
func (s *DocumentService) Open(ctx context.Context, id uint) (*model.Document, []byte, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.blobs.Get(ctx, doc.StoragePath)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: file for document %d is missing", ErrNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return doc, obj.Data, nil
}

// Delete removes the document row and its chunks together, then the blob. A blob that cannot be
// removed is logged and left behind; the document is already gone.
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.uow.Do(ctx, func(docs *repository.DocumentRepository, chunks repository.ChunkStore) error {
		if _, err := docs.GetByIDForUpdate(ctx, doc.ID); err != nil {
			return err
		}
		if err := chunks.DeleteDocumentChunks(ctx, doc.ID); err != nil {
			return err
		}
		return docs.DeleteByID(ctx, doc.ID)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.blobs.Delete(ctx, doc.StoragePath); err != nil {
		log.Printf("delete blob %s failed: %v", doc.StoragePath, err)
	}
	s.invalidateSummary(ctx, doc.ID)
	s.activity.Record(model.ActionDelete, fmt.Sprintf("Deleted %s", doc.Title))
	return nil
}

// Reindex rebuilds the chunk set of a stored document from its blob. The new chunks are written
// under a lock on the document row, so a concurrent Delete either waits or wins outright.
func (s *DocumentService) Reindex(ctx context.Context, id uint) (*UploadResult, error) {
	doc, data, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	inputs, err := s.prepareChunks(ctx, data)
	if err != nil {
		return nil, err
	}

	var stored int64
	err = s.uow.Do(ctx, func(docs *repository.DocumentRepository, chunks repository.ChunkStore) error {
		current, err := docs.GetByIDForUpdate(ctx, doc.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: document %d was deleted during reindex", ErrNotFound, doc.ID)
		}
		doc = current
		if err := chunks.ReplaceChunks(ctx, doc.ID, inputs); err != nil {
			return err
		}
		stored, err = chunks.CountByDocument(ctx, doc.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.invalidateSummary(ctx, doc.ID)
	return &UploadResult{Document: *doc, Chunks: int(stored)}, nil
}

func (s *DocumentService) prepareChunks(ctx context.Context, data []byte) ([]model.ChunkInput, error) {
	text, err := s.extractor.Extract(data)
	if err != nil {
		if errors.Is(err, ErrExtraction) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	texts := rag.SplitText(text, s.cfg.ChunkSize)
	vectors, err := rag.EmbedAll(ctx, s.embedder, texts, s.cfg.Embed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	inputs := make([]model.ChunkInput, len(texts))
	for i, t := range texts {
		inputs[i] = model.ChunkInput{Content: t, Embedding: vectors[i]}
	}
	return inputs, nil
}

func (s *DocumentService) invalidateSummary(ctx context.Context, id uint) {
	if s.summaries == nil {
		return
	}
	if err := s.summaries.Delete(ctx, id); err != nil {
		log.Printf("invalidate summary cache for document %d failed: %v", id, err)
	}
}

func storagePath(fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		ext = "pdf"
	}
	return fmt.Sprintf("uploads/%s.%s", uuid.NewString(), ext)
}

func contentTypeOf(fileName, declared string) string {
	if ct := strings.TrimSpace(declared); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return defaultContentType
}
