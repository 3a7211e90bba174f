package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Evolvus/evolvus-application/domain"
	"github.com/Evolvus/evolvus-application/internal/docket"
	"github.com/Evolvus/evolvus-application/internal/repository"
	"github.com/Evolvus/evolvus-application/schema"
	"github.com/joho/godotenv"
)

type Config struct {
	// MongoURL is the store connection string.
	MongoURL string
	// Database is the store database name.
	Database string
	// DocketURL is the audit collaborator's post endpoint. Empty means
	// no audit events are emitted.
	DocketURL string

	// AuditApplication, AuditActor and AuditIPAddress fill the matching
	// audit event fields when an operation has no record actor of its
	// own.
	AuditApplication string
	AuditActor       string
	AuditIPAddress   string

	Logger *slog.Logger
}

// ConfigFromEnv reads the environment (and a .env file when present).
func ConfigFromEnv() Config {
	godotenv.Load()
	return Config{
		MongoURL:  os.Getenv("MONGO_DB_URL"),
		Database:  os.Getenv("MONGO_DB_NAME"),
		DocketURL: os.Getenv("DOCKET_POST_URL"),
	}
}

func newLogger(service string) *slog.Logger {
	env := os.Getenv("ENV")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	child := logger.With(slog.Group("service_info", slog.String("env", env), slog.String("service", service)))
	return child
}

func (c Config) auditInfo(source string) auditInfo {
	info := auditInfo{
		application: c.AuditApplication,
		source:      source,
		actor:       c.AuditActor,
		ipAddress:   c.AuditIPAddress,
	}
	if info.application == "" {
		info.application = "PLATFORM"
	}
	if info.actor == "" {
		info.actor = "SYSTEM"
	}
	if info.ipAddress == "" {
		if host, err := os.Hostname(); err == nil {
			info.ipAddress = host
		} else {
			info.ipAddress = "localhost"
		}
	}
	return info
}

// Registry is the wired-up library: both entity facades sharing one
// store connection.
type Registry struct {
	Applications *Service
	Entities     *EntityService

	conn *repository.Connection
}

// Open connects to the store, bootstraps the unique code indexes and
// wires the facades. Zero-valued config fields fall back to the
// environment.
func Open(ctx context.Context, cfg Config) (*Registry, error) {
	envCfg := ConfigFromEnv()
	if cfg.MongoURL == "" {
		cfg.MongoURL = envCfg.MongoURL
	}
	if cfg.Database == "" {
		cfg.Database = envCfg.Database
	}
	if cfg.DocketURL == "" {
		cfg.DocketURL = envCfg.DocketURL
	}

	conn, err := repository.Connect(ctx, repository.Config{URL: cfg.MongoURL, Database: cfg.Database})
	if err != nil {
		return nil, fmt.Errorf("error connecting to store: %w", err)
	}

	appSchema := schema.Application()
	entitySchema := schema.ApplicationEntity()
	if err := conn.EnsureUniqueIndex(ctx, repository.ApplicationCollection, appSchema.UniqueField()); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	if err := conn.EnsureUniqueIndex(ctx, repository.ApplicationEntityCollection, entitySchema.UniqueField()); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	var sink domain.AuditSink
	if cfg.DocketURL != "" {
		sink = docket.NewClient(cfg.DocketURL)
	}

	// Inserts are re-checked with the storage-boundary variant; update
	// patches with the facade-side variant, so the store-only name
	// pattern never rejects a patch the facade already accepted.
	appRepo := repository.NewMongoApplication(conn, schema.ApplicationStore(), appSchema)
	entityRepo := repository.NewMongoApplicationEntity(conn, entitySchema)

	applications := NewService(cfg.Logger, appRepo, sink)
	applications.audit = cfg.auditInfo("application")
	entities := NewEntityService(cfg.Logger, entityRepo, sink)
	entities.audit = cfg.auditInfo("applicationentity")

	return &Registry{
		Applications: applications,
		Entities:     entities,
		conn:         conn,
	}, nil
}

func (r *Registry) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}
