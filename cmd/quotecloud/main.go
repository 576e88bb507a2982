// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/quotecloud"
	"github.com/poiesic/quotecloud/ai"
	"github.com/poiesic/quotecloud/corpus"
	"github.com/poiesic/quotecloud/keywords"
	"github.com/poiesic/quotecloud/pipeline"
)

func main() {
	app := &cli.App{
		Name:  "quotecloud",
		Usage: "Batch pipeline turning a quote corpus into static search artifacts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Normalize the corpus, embed quotes into the vector store, and score keywords",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "quotes",
						Aliases:  []string{"q"},
						Usage:    "Path to the raw quotes JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB vector store directory",
						Value:   "./db",
					},
					&cli.StringFlag{
						Name:  "keywords-out",
						Usage: "Output path for the keyword table artifact",
						Value: "data/keywords.json",
					},
					&cli.StringFlag{
						Name:  "stats-out",
						Usage: "Output path for the corpus statistics artifact",
						Value: "data/stats.json",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "all-minilm",
					},
					&cli.IntFlag{
						Name:  "top-keywords",
						Usage: "Maximum keywords kept per category",
						Value: keywords.DefaultTopPerCategory,
					},
					&cli.IntFlag{
						Name:  "min-tag-frequency",
						Usage: "Minimum occurrences for a tag to become a keyword candidate",
						Value: keywords.DefaultMinTagFrequency,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of quotes to embed in each batch",
						Value: pipeline.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size (0 uses half the CPUs)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N quotes",
						Value: pipeline.DefaultReportInterval,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: pipeline.DefaultMaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "call-timeout",
						Usage: "Deadline for each embedding or vector-store call",
						Value: pipeline.DefaultCallTimeout,
					},
				},
			},
			{
				Name:   "generate",
				Usage:  "Materialize the static artifact tree from the indexed corpus",
				Action: generateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "quotes",
						Aliases:  []string{"q"},
						Usage:    "Path to the raw quotes JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB vector store directory",
						Value:   "./db",
					},
					&cli.StringFlag{
						Name:  "keywords",
						Usage: "Path to the keyword table produced by the index command",
						Value: "data/keywords.json",
					},
					&cli.StringFlag{
						Name:  "stats",
						Usage: "Path to the statistics artifact produced by the index command",
						Value: "data/stats.json",
					},
					&cli.StringFlag{
						Name:    "api-dir",
						Aliases: []string{"o"},
						Usage:   "Artifact output root directory",
						Value:   "static/api",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "all-minilm",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of quotes stored per keyword artifact",
						Value: pipeline.DefaultTopK,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size (0 uses half the CPUs)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N keywords",
						Value: pipeline.DefaultReportInterval,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: pipeline.DefaultMaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "call-timeout",
						Usage: "Deadline for each embedding or vector-store call",
						Value: pipeline.DefaultCallTimeout,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	records, err := corpus.Load(c.String("quotes"))
	if err != nil {
		return err
	}

	engine, err := quotecloud.NewEngine(c.String("db"),
		quotecloud.WithAIConfig(aiConfig),
		quotecloud.WithFreshCollection())
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer engine.Close()

	scorer := keywords.NewScorer(keywords.NewTFIDF(),
		keywords.WithTopPerCategory(c.Int("top-keywords")),
		keywords.WithMinTagFrequency(c.Int("min-tag-frequency")))

	config := pipelineConfig(c)
	config.BatchSize = c.Int("batch-size")
	config.EmbeddingModel = c.String("embedding-model")

	indexer, err := engine.NewIndexer(scorer, pipeline.WithIndexerConfig(config))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Corpus: %s\n", c.String("quotes"))
	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	result, err := indexer.Run(ctx, records)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	keywordsOut := c.String("keywords-out")
	statsOut := c.String("stats-out")
	for _, path := range []string{keywordsOut, statsOut} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
	}

	if err := pipeline.WriteJSONIndent(keywordsOut, result.Keywords); err != nil {
		return err
	}
	if err := pipeline.WriteJSONIndent(statsOut, result.Stats); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Indexed %d quotes across %d categories\n",
		result.Stats.TotalQuotes, result.Stats.TotalCategories)
	return nil
}

func generateCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	table, err := pipeline.LoadKeywordTable(c.String("keywords"))
	if err != nil {
		return err
	}

	records, err := corpus.Load(c.String("quotes"))
	if err != nil {
		return err
	}
	normalized := corpus.Normalize(records)

	engine, err := quotecloud.NewEngine(c.String("db"),
		quotecloud.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer engine.Close()

	config := pipelineConfig(c)
	config.TopK = c.Int("top-k")
	config.EmbeddingModel = c.String("embedding-model")

	layout := pipeline.NewLayout(c.String("api-dir"))
	materializer, err := engine.NewMaterializer(layout, pipeline.WithMaterializerConfig(config))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Artifacts: %s\n", c.String("api-dir"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := materializer.Run(ctx, table, normalized.Quotes); err != nil {
		return fmt.Errorf("materialization failed: %w", err)
	}

	if err := layout.CopyThrough(c.String("keywords"), c.String("stats")); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Generated artifacts for %d keywords in %s\n",
		len(table.Vocabulary()), c.String("api-dir"))
	return nil
}

// pipelineConfig builds a pipeline config from the flags shared by both
// commands.
func pipelineConfig(c *cli.Context) *pipeline.Config {
	config := pipeline.DefaultConfig()
	if workers := c.Int("workers"); workers > 0 {
		config.Workers = workers
	}
	config.ReportInterval = c.Int("report-interval")
	config.MaxRetries = c.Int("max-retries")
	config.RetryDelay = c.Duration("retry-delay")
	config.CallTimeout = c.Duration("call-timeout")
	return config
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
