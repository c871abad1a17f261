package app

import (
	"context"
	"fmt"
	"time"

	"studymate/internal/model"
	"studymate/internal/repository"
)

// Completer turns a prompt into model text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// complete bounds a completion call by timeout and tags failures with ErrGeneration.
func complete(ctx context.Context, completer Completer, timeout time.Duration, prompt string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return out, nil
}

// loadDocument fetches a document and maps a missing row to ErrNotFound.
func loadDocument(ctx context.Context, docs *repository.DocumentRepository, id uint) (*model.Document, error) {
	doc, err := docs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

// documentTexts returns the stored chunk texts of a document in order.
func documentTexts(ctx context.Context, chunks repository.ChunkStore, id uint) ([]string, error) {
	rows, err := chunks.ListByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Content
	}
	return texts, nil
}
