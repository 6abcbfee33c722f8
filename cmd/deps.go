package cmd

import (
	"context"
	"fmt"
	stdlog "log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/ai"
	"github.com/spigell/mockwise/internal/ai/gemini"
	"github.com/spigell/mockwise/internal/ai/openai"
	"github.com/spigell/mockwise/internal/answers"
	"github.com/spigell/mockwise/internal/interview"
	"github.com/spigell/mockwise/internal/logger"
	"github.com/spigell/mockwise/internal/metrics"
	"github.com/spigell/mockwise/internal/secrets"
	"github.com/spigell/mockwise/internal/storage"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

// deps is everything a command needs, built from the config.
type deps struct {
	config     *Config
	logger     *zap.Logger
	store      storage.Store
	metrics    *metrics.Metrics
	scorer     *ai.Scorer
	questions  *ai.QuestionGenerator
	guard      *answers.Guard
	interviews *interview.Service
}

func (d *deps) Close() {
	if d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		d.logger.Warn("closing storage", zap.Error(err))
	}
}

// buildDeps wires storage and, when withAI is set, the generative service.
func buildDeps(ctx context.Context, config *Config, log *zap.Logger, withAI bool) (*deps, error) {
	store, err := newStore(ctx, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	d := &deps{
		config:  config,
		logger:  log,
		store:   store,
		metrics: metrics.New(),
	}
	d.guard = answers.NewGuard(store, logger.Component(log, "guard")).WithObserver(d.metrics)

	if !withAI {
		return d, nil
	}

	generator, maxLogLength, err := newContentGenerator(ctx, config.AI, log)
	if err != nil {
		d.Close()
		return nil, err
	}

	d.scorer = ai.NewScorer(generator, logger.Component(log, "scorer"), maxLogLength).WithObserver(d.metrics)
	d.questions = ai.NewQuestionGenerator(generator, config.AI.Questions, logger.Component(log, "questions"), maxLogLength).
		WithObserver(d.metrics)
	d.interviews = interview.NewService(store, d.questions, logger.Component(log, "interviews"))

	return d, nil
}

func newStore(ctx context.Context, cfg *StorageConfig) (storage.Store, error) {
	opts := storage.Config{Driver: cfg.Driver}
	if cfg.SQLite != nil {
		opts.SQLitePath = cfg.SQLite.Path
	}
	if cfg.Firestore != nil {
		opts.Firestore = storage.FirestoreConfig{
			ProjectID:       cfg.Firestore.ProjectID,
			Database:        cfg.Firestore.Database,
			CredentialsFile: cfg.Firestore.CredentialsFile,
		}
	}
	return storage.Open(ctx, opts)
}

// newContentGenerator returns the configured provider and its log preview length.
func newContentGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.ContentGenerator, int, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", providerGemini:
		gcfg := cfg.Gemini
		if gcfg == nil {
			gcfg = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  gcfg.APIKeyFile,
			Value: gcfg.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, 0, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		genLogger := logger.WithProvider(log, providerGemini, gcfg.Model).
			With(zap.Int("ai_retry_attempts", gcfg.MaxRetries))

		generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.SystemInstruction, gcfg.MaxRetries, genLogger)
		if err != nil {
			return nil, 0, err
		}
		return generator, gcfg.MaxLogLength, nil

	case providerOpenAI:
		ocfg := cfg.OpenAI
		if ocfg == nil {
			ocfg = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			File:  ocfg.APIKeyFile,
			Value: ocfg.APIKey,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, 0, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}

		generator, err := openai.NewGenerator(apiKey, ocfg.BaseURL, ocfg.Model, ocfg.SystemInstruction,
			logger.WithProvider(log, providerOpenAI, ocfg.Model))
		if err != nil {
			return nil, 0, err
		}
		return generator, ocfg.MaxLogLength, nil

	default:
		return nil, 0, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// setup builds the logger and config shared by every command.
func setup() (*Config, *zap.Logger) {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		stdlog.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	return config, lg
}
