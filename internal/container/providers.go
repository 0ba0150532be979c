package container

import (
	"context"
	"fmt"

	"github.com/garyjia/lecturer-claims/internal/application/dispatcher"
	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/application/service"
	"github.com/garyjia/lecturer-claims/internal/application/workflow"
	"github.com/garyjia/lecturer-claims/internal/domain/event"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/auth"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/export"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/repository"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/storage"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/worker"
	"github.com/garyjia/lecturer-claims/migrations"
	"github.com/garyjia/lecturer-claims/pkg/database"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// StorageBundle holds storage-related components.
type StorageBundle struct {
	Documents *storage.LocalDocumentStore
	Exporter  port.ReportExporter
}

// ProvideDatabase opens the database and applies the embedded migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	migrator := database.NewMigrator(db, logger)
	if _, err := migrator.RunMigrations(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	version, err := migrator.SchemaVersion(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("Database ready", zap.String("path", cfg.Path), zap.Int("schema_version", version))

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Claims:  repository.NewClaimRepository(db.DB, logger),
		History: repository.NewHistoryRepository(db.DB, logger),
		Actors:  repository.NewActorRepository(db.DB, logger),
	}, nil
}

// ProvideStorage creates the document store and report exporter.
func ProvideStorage(cfg *StorageConfig, reportCfg *ReportConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil || reportCfg == nil {
		return nil, fmt.Errorf("storage and report config are required")
	}
	if cfg.DocumentsDir == "" {
		return nil, fmt.Errorf("documents directory is required")
	}

	documents := storage.NewLocalDocumentStore(cfg.DocumentsDir, logger)
	if err := documents.Health(); err != nil {
		return nil, err
	}

	return &StorageBundle{
		Documents: documents,
		Exporter:  export.NewWorkbookExporter(logger, export.WithInstitution(reportCfg.Institution)),
	}, nil
}

// ProvideTokenService creates the bearer token signer and verifier.
func ProvideTokenService(cfg *AuthConfig) (*auth.TokenService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth config is required")
	}
	return auth.NewTokenService(cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL), auth.WithIssuer(cfg.Issuer))
}

// ProvideDispatcher creates the event dispatcher and subscribes the audit log.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	d := dispatcher.NewDispatcher(
		dispatcher.WithLogger(&zapLoggerAdapter{logger: logger}),
	)
	d.SubscribeAll([]event.Type{
		event.TypeClaimSubmitted,
		event.TypeClaimApproved,
		event.TypeClaimRejected,
		event.TypeClaimPaid,
	}, "audit-log", createAuditLogHandler(logger.Named("audit")))

	return d, nil
}

// WorkflowDeps holds dependencies required for creating the claim engine.
type WorkflowDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher
}

// ProvideClaimEngine creates the claim lifecycle engine.
func ProvideClaimEngine(deps *WorkflowDeps) (workflow.ClaimEngine, error) {
	if deps == nil {
		return nil, fmt.Errorf("workflow dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}

	var opts []workflow.EngineOption
	if deps.Dispatcher != nil {
		opts = append(opts, workflow.WithDispatcher(deps.Dispatcher))
	}

	return workflow.NewEngine(deps.Repos.Claims, deps.Repos.History, deps.TxManager, opts...), nil
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos   *RepositoryBundle
	Storage *StorageBundle
	Engine  workflow.ClaimEngine
	Logger  *zap.Logger
}

// ProvideServices creates the claim and report services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil || deps.Storage == nil || deps.Engine == nil {
		return nil, fmt.Errorf("repositories, storage and engine are required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}

	return &ServiceBundle{
		Claims: service.NewClaimService(
			deps.Repos.Actors,
			deps.Repos.Claims,
			deps.Repos.History,
			deps.Storage.Documents,
			deps.Engine,
			serviceLogger,
		),
		Reports: service.NewReportService(
			deps.Repos.Actors,
			deps.Repos.Claims,
			deps.Storage.Exporter,
			serviceLogger,
		),
	}, nil
}

// ProvideWorkers registers the background workers.
func ProvideWorkers(cfg *StorageConfig, repos *RepositoryBundle, documents port.DocumentInventory, logger *zap.Logger) *worker.Manager {
	manager := worker.NewManager(logger)
	if cfg.SweepInterval > 0 {
		manager.Register(worker.NewDocumentSweeper(worker.DocumentSweeperConfig{
			Interval:    cfg.SweepInterval,
			GracePeriod: cfg.OrphanGracePeriod,
		}, documents, repos.Claims, logger))
	}
	return manager
}

// createAuditLogHandler writes one structured line per claim lifecycle event.
func createAuditLogHandler(logger *zap.Logger) dispatcher.Handler {
	return func(ctx context.Context, evt *event.Event) error {
		fields := []zap.Field{
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.Type.String()),
			zap.Int64("claim_id", evt.ClaimID),
			zap.String("actor_id", evt.ActorID),
			zap.Time("timestamp", evt.Timestamp),
		}
		for key, value := range evt.Payload {
			fields = append(fields, zap.Any(key, value))
		}
		logger.Info("Claim event", fields...)
		return nil
	}
}
