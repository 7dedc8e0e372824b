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

	"github.com/poiesic/evidex"
	"github.com/poiesic/evidex/ai"
	"github.com/poiesic/evidex/ingest"
	"github.com/poiesic/evidex/reindex"
	"github.com/poiesic/evidex/router"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "evidex",
		Usage: "Rulebook evidence engine: index documents, retrieve ranked passages, generate answers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "evidex.db",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "router-table",
				Usage: "Path to a TOML category table (built-in table when unset)",
			},
			&cli.StringFlag{
				Name:  "ai-host",
				Usage: "OpenAI-compatible service host URL for embeddings and generation",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.StringFlag{
				Name:  "generator-model",
				Usage: "Answer generation model name",
				Value: "qwen2.5:3b",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Bearer token for the AI services",
				Value: "none",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Chunk a document and add it to the index",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
			},
			{
				Name:      "query",
				Usage:     "Retrieve ranked evidence for a question",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "answer",
						Aliases: []string{"a"},
						Usage:   "Generate an answer from the retrieved evidence",
					},
					&cli.StringFlag{
						Name:  "doc",
						Usage: "Restrict retrieval to one document ID",
					},
				},
			},
			{
				Name:      "remove",
				Usage:     "Delete a document and its chunks from the index",
				ArgsUsage: "<doc-id>",
				Action:    removeCommand,
			},
			{
				Name:   "documents",
				Usage:  "List indexed documents",
				Action: documentsCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show index counters",
				Action: statsCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every chunk with the configured embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Maximum attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

// openEngine builds an Engine from the global flags. The caller owns the
// returned engine and must Close it.
func openEngine(c *cli.Context) (*evidex.Engine, error) {
	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithAPIKey(c.String("api-key")),
	)

	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []evidex.EngineOption{evidex.WithAIConfig(aiConfig)}

	// Load custom router table if requested
	if path := c.String("router-table"); path != "" {
		table, err := router.LoadTable(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load router table: %w", err)
		}
		opts = append(opts, evidex.WithRouterTable(table))
	}

	engine, err := evidex.NewEngine(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}

	return engine, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("usage: evidex ingest <file>")
	}
	path := c.Args().Get(0)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	doc := ingest.NewDocument(filepath.Base(path), content)

	summary, err := engine.Ingest(ctx, doc)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("%s: %s, %d chunks (doc %s)\n", path, summary.Status, summary.ChunksIndexed, doc.ID())
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("usage: evidex query <question>")
	}
	question := c.Args().Get(0)

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var queryOpts []evidex.QueryOption
	if docID := c.String("doc"); docID != "" {
		queryOpts = append(queryOpts, evidex.WithDocFilter(docID))
	}

	if c.Bool("answer") {
		answer, err := engine.Answer(ctx, question, queryOpts...)
		if err != nil {
			return fmt.Errorf("answer failed: %w", err)
		}
		fmt.Println(answer.Text)
		fmt.Printf("\n(confidence %.2f, %d passages)\n", answer.Confidence, answer.Passages)
		return nil
	}

	result, err := engine.Query(ctx, question, queryOpts...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(result.Evidence) == 0 {
		fmt.Println("no evidence found")
		return nil
	}

	fmt.Printf("mode=%s role=%s evidence=%d\n\n", result.Intent.Mode, result.Intent.SubjectRole, len(result.Evidence))
	for i, ev := range result.Evidence {
		fmt.Printf("%2d. [%.2f] %s p.%d%s\n", i+1, ev.Confidence, ev.Metadata.Filename, ev.Metadata.Page, sectionLabel(ev.Metadata.SectionID, ev.Metadata.Subrule))
		fmt.Printf("    %s\n\n", snippet(ev.Text, 240))
	}
	return nil
}

func removeCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("usage: evidex remove <doc-id>")
	}
	docID := c.Args().Get(0)

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	summary, err := engine.Remove(ctx, docID)
	if err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}

	fmt.Printf("%s: %s, %d chunks removed\n", docID, summary.Status, summary.ChunksRemoved)
	return nil
}

func documentsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	docs := engine.Documents(context.Background())
	if len(docs) == 0 {
		fmt.Println("no documents indexed")
		return nil
	}

	for _, d := range docs {
		fmt.Printf("%s  %s (%d pages, %d chunks)\n", d.DocID, d.Filename, d.Pages, d.Chunks)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats := engine.Stats(context.Background())
	fmt.Printf("documents: %d\n", stats.Documents)
	fmt.Printf("chunks:    %d\n", stats.Chunks)
	fmt.Printf("dimension: %d\n", stats.Dimension)
	if !stats.LastPersist.IsZero() {
		fmt.Printf("persisted: %s\n", stats.LastPersist.Format(time.RFC3339))
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxAttempts:    c.Int("max-attempts"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxAttempts <= 0 {
		return fmt.Errorf("max-attempts must be greater than 0")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("ai-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := engine.NewReindexer(config, os.Stderr).Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

// sectionLabel formats the extracted rule reference, empty when no section
// was detected.
func sectionLabel(sectionID int, subrule string) string {
	if sectionID == 0 {
		return ""
	}
	if subrule == "" {
		return fmt.Sprintf(" rule %d", sectionID)
	}
	return fmt.Sprintf(" rule %d.%s", sectionID, subrule)
}

// snippet collapses whitespace and truncates for one-line display.
func snippet(text string, max int) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) <= max {
		return flat
	}
	return flat[:max] + "..."
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
