package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openfoia/foiagraph/internal/config"
	"github.com/openfoia/foiagraph/internal/core"
	"github.com/openfoia/foiagraph/internal/core/community"
	"github.com/openfoia/foiagraph/internal/core/extraction"
	"github.com/openfoia/foiagraph/internal/core/linking"
	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/openfoia/foiagraph/internal/core/redaction"
	"github.com/openfoia/foiagraph/internal/driver"
	"github.com/openfoia/foiagraph/internal/llm"
	"github.com/openfoia/foiagraph/internal/store"
)

// BuildPipeline assembles the pipeline described by cfg. The returned
// cleanup closes every opened store.
func BuildPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*core.Pipeline, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	backend, err := llm.NewBackend(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize extraction backend: %w", err)
	}

	ex, err := extraction.NewExtractor(backend, extraction.Options{
		MaxChars:       cfg.Extraction.MaxChars,
		Concurrency:    cfg.Extraction.ChunkConcurrency,
		ChunkTimeout:   cfg.Extraction.ChunkTimeout(),
		PromptTemplate: cfg.Extraction.Prompt,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, err
	}

	level, err := model.ParseConfidenceLevel(cfg.Linking.DefaultConfidence)
	if err != nil {
		return nil, nil, err
	}

	sqlitePath := cfg.Store.SQLitePath
	if sqlitePath == "" {
		sqlitePath = ":memory:"
	}
	docs, err := store.NewSQLiteStore(sqlitePath)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, func() { docs.Close() })

	communities, err := community.NewDetector(cfg.Community.Algorithm)
	if err != nil {
		return nil, nil, err
	}

	opts := core.Options{
		Communities:       communities,
		DefaultConfidence: level,
		BulkConcurrency:   cfg.Concurrency.BulkIngest,
		Documents:         docs,
		Logger:            logger,
	}

	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { d.Close(context.Background()) })
		if err := d.BuildIndices(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Graph = driver.NewGraphStore(d, logger)
	}

	p := core.NewPipeline(
		ex,
		linking.New(linking.Options{Logger: logger}),
		redaction.NewDetector(redaction.Options{
			DarkThreshold: cfg.Redaction.DarkThreshold,
			MinDarkRatio:  cfg.Redaction.MinDarkRatio,
			MaxPagePixels: cfg.Redaction.MaxPagePixels,
			Logger:        logger,
		}),
		opts,
	)

	// Canonical ids must survive restarts, so a persisted graph seeds the linker.
	if opts.Graph != nil {
		if err := p.RestoreGraph(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return p, cleanup, nil
}
