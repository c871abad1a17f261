package rag

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	defaultEmbedBatchSize   = 10 // DashScope and similar APIs often limit batch size
	defaultEmbedConcurrency = 4
)

// EmbedOptions bounds how chunks are sent to the embedder.
type EmbedOptions struct {
	BatchSize   int
	Concurrency int
}

// EmbedAll embeds texts concurrently and returns vectors in input order regardless of
// completion order. Batches are used when the embedder supports them.
func EmbedAll(ctx context.Context, embedder Embedder, texts []string, opts EmbedOptions) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultEmbedConcurrency
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	batcher, canBatch := embedder.(BatchEmbedder)
	if !canBatch {
		batchSize = 1
	}

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		g.Go(func() error {
			if !canBatch {
				vec, err := embedder.Embed(gctx, texts[start])
				if err != nil {
					return fmt.Errorf("embed chunk %d failed: %w", start, err)
				}
				vectors[start] = vec
				return nil
			}
			batch, err := batcher.EmbedBatch(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d failed: %w", start, end-1, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embedding count mismatch: got %d, want %d", len(batch), end-start)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
