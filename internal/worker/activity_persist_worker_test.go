package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/model"
)

type recordingStore struct {
	entries []model.ActivityLog
	err     error
}

func (s *recordingStore) Create(_ context.Context, entry *model.ActivityLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func TestActivityPersistWorker_HandlePersistsEntry(t *testing.T) {
	store := &recordingStore{}
	w := NewActivityPersistWorker(nil, store, "q")

	body := []byte(`{"id":99,"action":"chat","details":"Asked about cells","created_at":"2026-01-02T03:04:05Z"}`)
	require.NoError(t, w.handle(context.Background(), body))

	require.Len(t, store.entries, 1)
	got := store.entries[0]
	assert.Zero(t, got.ID)
	assert.Equal(t, model.ActionChat, got.Action)
	assert.Equal(t, "Asked about cells", got.Details)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), got.CreatedAt)
}

func TestActivityPersistWorker_HandleRejectsBadPayloads(t *testing.T) {
	store := &recordingStore{}
	w := NewActivityPersistWorker(nil, store, "q")

	assert.Error(t, w.handle(context.Background(), []byte(`not json`)))

	err := w.handle(context.Background(), []byte(`{"action":"login"}`))
	assert.ErrorIs(t, err, errUnknownAction)
	assert.Empty(t, store.entries)
}

func TestActivityPersistWorker_HandlePropagatesStoreError(t *testing.T) {
	storeErr := errors.New("db down")
	w := NewActivityPersistWorker(nil, &recordingStore{err: storeErr}, "q")

	err := w.handle(context.Background(), []byte(`{"action":"upload","details":"x"}`))
	assert.ErrorIs(t, err, storeErr)
}

func TestActivityPersistWorker_CloseWithoutStart(t *testing.T) {
	w := NewActivityPersistWorker(nil, &recordingStore{}, "q")
	w.Close()
}
