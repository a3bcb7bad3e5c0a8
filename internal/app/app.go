// Package app builds the inspection pipeline from a Config. Both binaries
// share it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-bridge-inspector/internal/blob"
	"github.com/a3tai/mcp-bridge-inspector/internal/config"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection"
	"github.com/a3tai/mcp-bridge-inspector/internal/inspection/catalog"
	"github.com/a3tai/mcp-bridge-inspector/internal/logging"
	"github.com/a3tai/mcp-bridge-inspector/internal/store"
)

// App holds the wired components.
type App struct {
	Service *inspection.Service
	Blobs   blob.Store
	DB      *store.DB
	Logger  *zap.Logger
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDebug(),
	})
}

// Options maps configuration onto service options.
func Options(cfg *config.Config, names *catalog.NameBook) inspection.Options {
	opts := inspection.DefaultOptions()
	opts.FrameLayer = cfg.FrameLayer
	opts.TitleFallback = cfg.TitleFallback
	opts.MaxFileSize = cfg.MaxFileSize
	opts.PhotoWorkers = cfg.PhotoWorkers
	opts.PhotoReuse = cfg.PhotoReuse
	opts.Names = names
	return opts
}

// New opens the object store and database and builds the service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var names *catalog.NameBook
	if cfg.NamesFile != "" {
		book, err := catalog.LoadNames(cfg.NamesFile)
		if err != nil {
			return nil, err
		}
		names = book
	}

	blobs, err := newBlobs(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(ctx, cfg.DBDriver, cfg.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger.Info("pipeline ready",
		zap.String("storage", cfg.Storage),
		zap.String("bucket", cfg.Bucket),
		zap.String("dbdriver", cfg.DBDriver),
		zap.Bool("names", names != nil))

	return &App{
		Service: inspection.NewService(blobs, db, Options(cfg, names), logger),
		Blobs:   blobs,
		DB:      db,
		Logger:  logger,
	}, nil
}

func newBlobs(ctx context.Context, cfg *config.Config, logger *zap.Logger) (blob.Store, error) {
	switch cfg.Storage {
	case config.StorageS3:
		s3, err := blob.NewS3(ctx, blob.S3Config{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			PathStyle:       cfg.PathStyle,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create object store: %w", err)
		}
		return s3, nil
	case config.StorageMemory:
		return blob.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	err := a.DB.Close()
	_ = a.Logger.Sync() // EINVAL on stderr
	return err
}
