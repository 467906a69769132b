// Package engine wires configuration into a ready-to-use lead assistant:
// dataset provider, search index, generation client, reply cache and
// spreadsheet encoder.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/assistant"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/cache"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/export"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/generation"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/retrieval"
)

// Engine holds the wired components. Leads and Index are read-only after
// New returns.
type Engine struct {
	Config     *config.Config
	Leads      []leads.Lead
	Index      *retrieval.Index
	Classifier *retrieval.IntentClassifier
	Contexts   *retrieval.ContextAssembler
	Generator  generation.Generator
	Encoder    *export.XLSXEncoder
	Composer   *assistant.Composer

	logger  *observability.Logger
	closers []io.Closer
}

// New loads the dataset and builds every component. A dataset that cannot
// be loaded is an error; a missing generation credential or an unreachable
// cache only disables the feature.
func New(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Engine, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	e := &Engine{Config: cfg, logger: logger}

	provider, closer, err := OpenProvider(cfg.Dataset, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		e.closers = append(e.closers, closer)
	}

	start := time.Now()
	all, err := provider.Load(ctx)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("load leads: %w", err)
	}

	e.Leads = all
	e.Index = retrieval.NewIndex(all)
	e.Classifier = retrieval.NewIntentClassifier()
	e.Contexts = retrieval.NewContextAssembler(cfg.Assistant.ContextCap)
	e.Encoder = export.NewXLSXEncoder(cfg.Export.SheetName, cfg.Export.FilePrefix)
	e.Generator = e.buildGenerator()

	stats := e.Index.Stats()
	logger.Info().
		Str("driver", cfg.Dataset.Driver).
		Int("leads", stats.Total).
		Int("with_email", stats.WithEmail).
		Int("with_phone", stats.WithPhone).
		Dur("elapsed", time.Since(start)).
		Msg("Lead directory loaded")

	e.Composer = assistant.NewComposer(
		e.Classifier,
		e.Index,
		e.Contexts,
		e.Generator,
		e.Encoder,
		assistant.Options{
			ListCap:      cfg.Assistant.ListCap,
			DisplayCap:   cfg.Assistant.DisplayCap,
			SampleCap:    cfg.Assistant.SampleCap,
			HistoryTurns: cfg.Assistant.HistoryTurns,
			StatsCommand: cfg.Assistant.StatsCommand,
		},
		logger,
	)

	return e, nil
}

func (e *Engine) buildGenerator() generation.Generator {
	gc := e.Config.Generation
	if !gc.Enabled {
		e.logger.Info().Msg("Generation disabled by configuration")
		return nil
	}

	retry := generation.RetryConfigWithMax(gc.MaxRetries)
	gen, err := generation.NewOpenAIGenerator(generation.OpenAIConfig{
		APIKey:       gc.APIKey,
		BaseURL:      gc.BaseURL,
		Model:        gc.Model,
		Temperature:  gc.Temperature,
		MaxTokens:    gc.MaxTokens,
		Timeout:      gc.Timeout,
		HistoryTurns: e.Config.Assistant.HistoryTurns,
		Retry:        &retry,
	}, e.logger)
	if errors.Is(err, generation.ErrNoCredentials) {
		e.logger.Warn().Msg("OPENAI_API_KEY not set, replies will be deterministic")
		return nil
	}
	if err != nil {
		e.logger.Warn().Err(err).Msg("Generation client unavailable")
		return nil
	}

	if !gc.CacheReplies {
		return gen
	}

	c, err := cache.New(cache.Config{
		Driver:     e.Config.Cache.Driver,
		MaxEntries: e.Config.Cache.MaxEntries,
		Redis: cache.RedisConfig{
			Addr:     e.Config.Cache.Redis.Addr,
			Password: e.Config.Cache.Redis.Password,
			DB:       e.Config.Cache.Redis.DB,
			PoolSize: e.Config.Cache.Redis.PoolSize,
			Prefix:   e.Config.Cache.Redis.Prefix,
		},
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("driver", e.Config.Cache.Driver).Msg("Reply cache unavailable, continuing without it")
		return gen
	}
	e.closers = append(e.closers, c)

	e.logger.Info().
		Str("driver", e.Config.Cache.Driver).
		Dur("ttl", e.Config.Cache.TTL).
		Msg("Reply cache enabled")
	return generation.NewCachedGenerator(gen, c, e.Config.Cache.TTL, gen.Model(), e.logger)
}

// Close releases the dataset connection and the cache.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// OpenProvider returns the dataset provider for cfg and, for SQL drivers, the
// connection to close when done.
func OpenProvider(cfg config.DatasetConfig, logger *observability.Logger) (leads.Provider, io.Closer, error) {
	switch cfg.Driver {
	case "", "file":
		return leads.NewFileProvider(cfg.Path, logger), nil, nil
	case "sqlite", "sqlite3", "postgres":
		db, err := leads.OpenSQL(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return leads.NewSQLProvider(db, cfg.Query, logger), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown dataset driver: %s", cfg.Driver)
	}
}
