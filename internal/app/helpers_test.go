package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studymate/internal/blob"
	"studymate/internal/cache"
	"studymate/internal/model"
	"studymate/internal/rag"
	"studymate/internal/repository"
)

type stubExtractor struct {
	mu        sync.Mutex
	text      string
	err       error
	onExtract func()
}

func (e *stubExtractor) Extract([]byte) (string, error) {
	e.mu.Lock()
	hook := e.onExtract
	text, err := e.text, e.err
	e.mu.Unlock()
	if hook != nil {
		hook()
	}
	return text, err
}

func (e *stubExtractor) setText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

type scriptedCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (c *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.reply, c.err
}

func (c *scriptedCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []model.ActivityLog
}

func (r *recordingActivity) Record(action model.ActivityAction, details string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, model.ActivityLog{Action: action, Details: details})
}

func (r *recordingActivity) actions() []model.ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ActivityAction, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

// failingChunkStore fails every ReplaceChunks call, inside or outside a transaction.
type failingChunkStore struct {
	repository.ChunkStore
}

func (f failingChunkStore) ReplaceChunks(context.Context, uint, []model.ChunkInput) error {
	return fmt.Errorf("disk full")
}

func (f failingChunkStore) WithTx(tx *gorm.DB) repository.ChunkStore {
	return failingChunkStore{ChunkStore: f.ChunkStore.WithTx(tx)}
}

type testEnv struct {
	db        *gorm.DB
	redis     *miniredis.Miniredis
	docs      *repository.DocumentRepository
	chunks    repository.ChunkStore
	blobs     *blob.RedisStore
	summaries *cache.SummaryCache
	extractor *stubExtractor
	embedder  *rag.HashEmbedder
	completer *scriptedCompleter
	activity  *recordingActivity
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Document{}, &model.Chunk{}, &model.ActivityLog{}))

	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &testEnv{
		db:        db,
		redis:     mr,
		docs:      repository.NewDocumentRepository(db),
		chunks:    repository.NewChunkRepository(db),
		blobs:     blob.NewRedisStore(client, "blob:test"),
		summaries: cache.NewSummaryCache(client, time.Minute),
		extractor: &stubExtractor{},
		embedder:  rag.NewHashEmbedder(64),
		completer: &scriptedCompleter{},
		activity:  &recordingActivity{},
	}
}

func (e *testEnv) documentService() *DocumentService {
	return e.documentServiceWith(e.chunks)
}

func (e *testEnv) documentServiceWith(chunks repository.ChunkStore) *DocumentService {
	return NewDocumentService(
		e.docs,
		chunks,
		repository.NewUnitOfWork(e.db, chunks),
		e.blobs,
		e.extractor,
		e.embedder,
		e.summaries,
		e.activity,
		DocumentServiceConfig{ChunkSize: rag.DefaultChunkSize, MaxUploadBytes: 1 << 20},
	)
}

// upload stores a document whose extracted text is text.
func (e *testEnv) upload(t *testing.T, title, text string) *UploadResult {
	t.Helper()
	e.extractor.setText(text)
	res, err := e.documentService().Upload(context.Background(), UploadInput{
		FileName:    title + ".pdf",
		Title:       title,
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4 " + title),
	})
	require.NoError(t, err)
	return res
}

// paragraph returns n distinct six-character words joined by spaces.
func paragraph(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%05d", i)
	}
	return strings.Join(out, " ")
}
