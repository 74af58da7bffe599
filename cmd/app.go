package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crm-cleaner/internal/enrich"
	"github.com/sells-group/crm-cleaner/internal/inference"
	"github.com/sells-group/crm-cleaner/internal/pipeline"
	"github.com/sells-group/crm-cleaner/internal/store"
	"github.com/sells-group/crm-cleaner/pkg/anthropic"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "cleaner.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline builds the processing pipeline on top of an initialized store.
// A missing Anthropic key is not an error: the pipeline runs with inference
// disabled and produces deterministic fields only.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, err
	}

	var api anthropic.Client
	if cfg.Anthropic.Key != "" {
		api = anthropic.NewClient(cfg.Anthropic.Key)
	}
	ai := inference.New(api, inference.Config{
		Model:             cfg.Anthropic.Model,
		MaxTokens:         cfg.Anthropic.MaxTokens,
		RequestsPerSecond: cfg.Anthropic.RequestsPerSecond,
	})

	return pipeline.New(st, enrich.New(ai)), st, nil
}
