package rag

import (
	"context"
	"log"

	"studymate/internal/model"
)

// DefaultTopK is used when a caller asks for fewer than one match.
const DefaultTopK = 5

// Embedder maps text to a fixed-length vector. Implementations must be deterministic for
// identical input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is implemented by embedders that can embed several texts per call.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkSearcher is the read side of a chunk store.
type ChunkSearcher interface {
	NearestNeighbors(ctx context.Context, documentID uint, query []float32, topK int) ([]model.ScoredChunk, error)
}

// Match is a retrieved chunk, best match first.
type Match struct {
	ChunkID    uint    `json:"chunk_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// Retriever embeds a query and fetches the most similar chunks of one document.
type Retriever struct {
	embedder Embedder
	store    ChunkSearcher
}

func NewRetriever(embedder Embedder, store ChunkSearcher) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Search never fails: embedding or search errors are logged and produce an empty result, so
// callers see "no context found" instead of an error.
func (r *Retriever) Search(ctx context.Context, documentID uint, query string, topK int) []Match {
	if topK < 1 {
		topK = DefaultTopK
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("retrieval degraded: embed query for document %d failed: %v", documentID, err)
		return []Match{}
	}

	hits, err := r.store.NearestNeighbors(ctx, documentID, queryVec, topK)
	if err != nil {
		log.Printf("retrieval degraded: search document %d failed: %v", documentID, err)
		return []Match{}
	}

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		if hit.Chunk.DocumentID != documentID {
			continue
		}
		matches = append(matches, Match{
			ChunkID:    hit.Chunk.ID,
			ChunkIndex: hit.Chunk.ChunkIndex,
			Content:    hit.Chunk.Content,
			Similarity: hit.Score,
		})
	}
	return matches
}
