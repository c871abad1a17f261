package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"studymate/internal/ai"
	"studymate/internal/app"
	"studymate/internal/blob"
	"studymate/internal/cache"
	"studymate/internal/config"
	"studymate/internal/model"
	"studymate/internal/pkg/pdfextract"
	mysqlClient "studymate/internal/platform/mysql"
	postgresClient "studymate/internal/platform/postgres"
	rabbitmqClient "studymate/internal/platform/rabbitmq"
	redisClient "studymate/internal/platform/redis"
	sqliteClient "studymate/internal/platform/sqlite"
	"studymate/internal/rag"
	"studymate/internal/repository"
	"studymate/internal/worker"
)

type App struct {
	Config         *config.Config
	DB             *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	ActivityWorker *worker.ActivityPersistWorker
	Activity       *app.ActivityRecorder

	Documents *app.DocumentService
	Summaries *app.SummaryService
	Chat      *app.ChatService
	Quizzes   *app.QuizService
	Dashboard *app.DashboardService

	StartedAt time.Time
}

// Infra holds the external clients the services are built on. Tests fill it with in-process
// substitutes.
type Infra struct {
	DB        *gorm.DB
	Redis     *redis.Client
	MQConn    *amqp.Connection
	Embedder  rag.Embedder
	Completer app.Completer
	Extractor app.TextExtractor
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, cfg.Database.Driver); err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	var mqConn *amqp.Connection
	if cfg.Activity.Transport == "rabbitmq" {
		mqConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.ActivityQueue)
		if err != nil {
			return nil, err
		}
	}

	llmClient := ai.NewOpenAICompatibleClient(cfg.LLMTimeout())
	completer := ai.NewChatCompleter(llmClient, ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}, app.SystemPrompt)

	a := Assemble(cfg, Infra{
		DB:        db,
		Redis:     redisCli,
		MQConn:    mqConn,
		Embedder:  newEmbedder(cfg, llmClient),
		Completer: completer,
		Extractor: pdfextract.New(),
	})

	if mqConn != nil {
		activityWorker := worker.NewActivityPersistWorker(mqConn, repository.NewActivityRepository(db), cfg.RabbitMQ.ActivityQueue)
		if err := activityWorker.Start(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("start activity worker failed: %w", err)
		}
		a.ActivityWorker = activityWorker
	}
	return a, nil
}

// Assemble wires repositories and services over already connected infrastructure.
func Assemble(cfg *config.Config, infra Infra) *App {
	docRepo := repository.NewDocumentRepository(infra.DB)
	activityRepo := repository.NewActivityRepository(infra.DB)

	var chunkStore repository.ChunkStore = repository.NewChunkRepository(infra.DB)
	if cfg.Database.Driver == "postgres" {
		chunkStore = repository.NewPGVectorChunkRepository(infra.DB)
	}

	var recorder *app.ActivityRecorder
	if infra.MQConn != nil && cfg.Activity.Transport == "rabbitmq" {
		recorder = app.NewQueuedActivityRecorder(rabbitmqClient.NewActivityPublisher(infra.MQConn, cfg.RabbitMQ.ActivityQueue))
	} else {
		recorder = app.NewDirectActivityRecorder(activityRepo)
	}

	blobs := blob.NewRedisStore(infra.Redis, cfg.Redis.BlobPrefix)
	summaryCache := cache.NewSummaryCache(infra.Redis, cfg.SummaryTTL())
	timeout := cfg.LLMTimeout()

	documents := app.NewDocumentService(
		docRepo,
		chunkStore,
		repository.NewUnitOfWork(infra.DB, chunkStore),
		blobs,
		infra.Extractor,
		infra.Embedder,
		summaryCache,
		recorder,
		app.DocumentServiceConfig{
			ChunkSize:      cfg.RAG.ChunkSize,
			MaxUploadBytes: cfg.Upload.MaxBytes,
			Embed: rag.EmbedOptions{
				BatchSize:   cfg.LLM.EmbeddingBatchSize,
				Concurrency: cfg.LLM.EmbeddingConcurrency,
			},
		},
	)

	return &App{
		Config:    cfg,
		DB:        infra.DB,
		Redis:     infra.Redis,
		MQConn:    infra.MQConn,
		Activity:  recorder,
		Documents: documents,
		Summaries: app.NewSummaryService(docRepo, chunkStore, infra.Completer, summaryCache, recorder, cfg.RAG.SummaryContextChars, timeout),
		Chat: app.NewChatService(
			docRepo,
			rag.NewRetriever(infra.Embedder, chunkStore),
			infra.Completer,
			recorder,
			cfg.RAG.TopK,
			cfg.RAG.ChatContextChars,
			timeout,
		),
		Quizzes:   app.NewQuizService(docRepo, chunkStore, infra.Completer, recorder, cfg.RAG.QuizContextChars, cfg.RAG.QuizQuestions, timeout),
		Dashboard: app.NewDashboardService(docRepo, activityRepo),
		StartedAt: time.Now(),
	}
}

// Migrate creates the schema. Postgres stores chunk embeddings in a pgvector column.
func Migrate(db *gorm.DB, driver string) error {
	if err := db.AutoMigrate(&model.Document{}, &model.ActivityLog{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	if driver == "postgres" {
		return repository.MigratePGVector(db)
	}
	if err := db.AutoMigrate(&model.Chunk{}); err != nil {
		return fmt.Errorf("auto migrate chunks failed: %w", err)
	}
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return postgresClient.New(ctx, cfg.PostgresDSN())
	case "sqlite":
		return sqliteClient.New(ctx, cfg.SQLite.Path)
	default:
		return mysqlClient.New(ctx, cfg.MySQLDSN())
	}
}

func newEmbedder(cfg *config.Config, client *ai.OpenAICompatibleClient) rag.Embedder {
	if cfg.LLM.EmbeddingProvider == "hash" {
		log.Printf("using offline hash embedder (dimension %d)", cfg.LLM.EmbeddingDimension)
		return rag.NewHashEmbedder(cfg.LLM.EmbeddingDimension)
	}
	return ai.NewTextEmbedder(client, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	})
}

func (a *App) Close() error {
	var closeErr error
	if a.Activity != nil {
		a.Activity.Wait()
	}
	if a.ActivityWorker != nil {
		a.ActivityWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
