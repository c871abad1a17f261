package rag

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexEmbedder encodes the numeric text it receives, sleeping longer for early inputs so
// completion order differs from input order.
type indexEmbedder struct {
	calls atomic.Int32
	fail  string
}

func (e *indexEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if text == e.fail {
		return nil, errors.New("boom")
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil, err
	}
	time.Sleep(time.Duration(20-n%20) * time.Millisecond)
	return []float32{float32(n)}, nil
}

type batchIndexEmbedder struct {
	indexEmbedder
	batches atomic.Int32
}

func (e *batchIndexEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches.Add(1)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprint(i)
	}
	return out
}

func TestEmbedAll_PreservesOrder(t *testing.T) {
	e := &indexEmbedder{}
	vecs, err := EmbedAll(context.Background(), e, numbered(25), EmbedOptions{Concurrency: 8})
	require.NoError(t, err)
	require.Len(t, vecs, 25)
	for i, v := range vecs {
		assert.Equal(t, []float32{float32(i)}, v)
	}
	assert.Equal(t, int32(25), e.calls.Load())
}

func TestEmbedAll_UsesBatches(t *testing.T) {
	e := &batchIndexEmbedder{}
	vecs, err := EmbedAll(context.Background(), e, numbered(23), EmbedOptions{BatchSize: 10, Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, vecs, 23)
	for i, v := range vecs {
		assert.Equal(t, []float32{float32(i)}, v)
	}
	assert.Equal(t, int32(3), e.batches.Load())
}

func TestEmbedAll_PropagatesError(t *testing.T) {
	e := &indexEmbedder{fail: "3"}
	_, err := EmbedAll(context.Background(), e, numbered(6), EmbedOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestEmbedAll_Empty(t *testing.T) {
	vecs, err := EmbedAll(context.Background(), &indexEmbedder{}, nil, EmbedOptions{})
	require.NoError(t, err)
	assert.Empty(t, vecs)
}
