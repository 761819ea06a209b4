package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/paperchat-ai/paperchat/internal/api/handlers"
	"github.com/paperchat-ai/paperchat/internal/config"
	"github.com/paperchat-ai/paperchat/internal/database"
	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/index"
	"github.com/paperchat-ai/paperchat/internal/jobs"
	"github.com/paperchat-ai/paperchat/internal/openai"
	"github.com/paperchat-ai/paperchat/internal/repository"
	"github.com/paperchat-ai/paperchat/internal/server"
	"github.com/paperchat-ai/paperchat/internal/service"
	"github.com/paperchat-ai/paperchat/internal/storage"
	"github.com/paperchat-ai/paperchat/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the paperchat API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("ingest", false, "Ingest the configured corpus before serving")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("PAPERCHAT_OPENAI_API_KEY is required")
	}

	// The index backend is chosen by configuration: Postgres with
	// pgvector when a database URL is set, in-process otherwise.
	var idx index.Index
	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL, "file://migrations"); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		idx = repository.NewCorpusChunkIndex(pool)
	} else {
		idx = index.NewMemory()
		log.Println("using in-process vector index")
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
	})

	chunkCfg := service.ChunkConfig{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	if err := chunkCfg.Validate(); err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}

	ingestionSvc := service.NewIngestionService(client, idx, chunkCfg, cfg.EmbeddingDimensions)
	retrievalSvc := service.NewRetrievalService(client, idx, service.RetrievalConfig{
		RelevanceFloor: cfg.RelevanceFloor,
	})

	var corpusSource service.DocumentSource
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		corpusSource = service.ObjectSource{Store: s3Client}
		log.Printf("corpus source: s3 bucket '%s'", cfg.S3Bucket)
	} else {
		corpusSource = service.FSSource{Dir: cfg.CorpusDir}
		log.Printf("corpus source: directory '%s'", cfg.CorpusDir)
	}

	ingestFlag, _ := cmd.Flags().GetBool("ingest")
	if ingestFlag || cfg.IngestOnStart {
		stats, err := ingestionSvc.IngestFromSource(ctx, corpusSource)
		if err != nil {
			return fmt.Errorf("startup ingestion failed: %w", err)
		}
		log.Printf("ingested %d documents (%d chunks)", stats.Documents, stats.Chunks)
	}

	chat := &chatAdapter{client: client}
	registry := service.NewRegistry(func(sessionID string) *service.Engine {
		return service.NewEngine(sessionID, retrievalSvc, chat, service.EngineConfig{
			TopK:              cfg.TopK,
			HistoryWindow:     cfg.HistoryWindow,
			GenerationTimeout: cfg.GenerationTimeout,
			RejectConcurrent:  cfg.RejectConcurrent,
		})
	}, service.RegistryConfig{MaxSessions: cfg.MaxSessions})

	reaper := jobs.NewSessionReaper(registry, cfg.SessionIdleTTL)
	reaperWorker := jobs.NewWorker(reaper, time.Minute)
	go reaperWorker.Start(ctx)

	sessions := &registryAdapter{registry: registry}
	ingestor := &ingestorAdapter{svc: ingestionSvc, source: corpusSource}

	routerCfg := server.RouterConfig{
		ChatHandler:    handlers.NewChatHandler(sessions),
		SessionHandler: handlers.NewSessionHandler(sessions),
		IngestHandler:  handlers.NewIngestHandler(ingestor),
		HealthHandler:  handlers.NewHealthHandler(ingestionSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	reaperWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// chatAdapter bridges the engine's prompt messages to the OpenAI client.
type chatAdapter struct {
	client *openai.Client
}

func (a *chatAdapter) Complete(ctx context.Context, messages []service.PromptMessage) (string, error) {
	converted := make([]openai.Message, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, openai.Message{Role: m.Role, Content: m.Content})
	}
	return a.client.Complete(ctx, converted)
}

// registryAdapter exposes the session registry through the handler-side
// interfaces.
type registryAdapter struct {
	registry *service.Registry
}

func (a *registryAdapter) GetOrCreate(sessionID string) (handlers.Conversation, error) {
	engine, err := a.registry.GetOrCreate(sessionID)
	if err != nil {
		return nil, err
	}
	return engine, nil
}

func (a *registryAdapter) Lookup(sessionID string) (handlers.Conversation, bool) {
	engine, ok := a.registry.Lookup(sessionID)
	if !ok {
		return nil, false
	}
	return engine, true
}

func (a *registryAdapter) Evict(sessionID string) bool {
	return a.registry.Evict(sessionID)
}

// ingestorAdapter binds the ingestion service to the configured corpus
// source.
type ingestorAdapter struct {
	svc    *service.IngestionService
	source service.DocumentSource
}

func (a *ingestorAdapter) Ingest(ctx context.Context, docs []*domain.Document) (*service.IngestStats, error) {
	return a.svc.Ingest(ctx, docs)
}

func (a *ingestorAdapter) IngestFromCorpus(ctx context.Context) (*service.IngestStats, error) {
	return a.svc.IngestFromSource(ctx, a.source)
}

func runMigrations(databaseURL, sourceURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		log.Println("migrations: nothing to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}

	if upErr == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
