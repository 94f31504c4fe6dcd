// Copyright 2026 Veritas Legal Systems
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

	"github.com/urfave/cli/v2"
	"github.com/veritaslegal/casetrace"
	"github.com/veritaslegal/casetrace/ai"
	"github.com/veritaslegal/casetrace/core"
	"github.com/veritaslegal/casetrace/search"
	"github.com/veritaslegal/casetrace/timeline"
)

func main() {
	app := &cli.App{
		Name:  "casetrace",
		Usage: "Legal document ingestion and hybrid retrieval",
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
				Name:      "ingest",
				Usage:     "Ingest documents into a corpus",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
				Flags: append(libraryFlags(),
					&cli.StringFlag{
						Name:    "corpus",
						Aliases: []string{"c"},
						Usage:   "Target corpus (uploaded or precedent)",
						Value:   "uploaded",
					},
				),
			},
			{
				Name:      "crawl",
				Usage:     "Ingest a crawled judgment from a plain-text file",
				ArgsUsage: "FILE",
				Action:    crawlCommand,
				Flags: append(libraryFlags(),
					&cli.StringFlag{
						Name:     "case-id",
						Usage:    "Identifier of the crawled case",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Origin URL of the judgment",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Hybrid search across both corpora",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(libraryFlags(),
					&cli.IntFlag{
						Name:  "k",
						Usage: "Results per corpus",
						Value: 3,
					},
					&cli.StringFlag{
						Name:  "citation",
						Usage: "Keep only results citing this reporter citation",
					},
					&cli.StringFlag{
						Name:  "section",
						Usage: "Keep only results mentioning this statute section",
					},
					&cli.StringFlag{
						Name:  "party",
						Usage: "Keep only results from documents naming this party",
					},
					&cli.StringFlag{
						Name:  "judge",
						Usage: "Keep only results from documents naming this judge",
					},
					&cli.TimestampFlag{
						Name:   "from",
						Usage:  "Earliest document date (YYYY-MM-DD)",
						Layout: "2006-01-02",
					},
					&cli.TimestampFlag{
						Name:   "to",
						Usage:  "Latest document date (YYYY-MM-DD)",
						Layout: "2006-01-02",
					},
				),
			},
			{
				Name:   "graph",
				Usage:  "Print the entity co-occurrence graph",
				Action: graphCommand,
				Flags: append(libraryFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of nodes",
						Value: 25,
					},
				),
			},
			{
				Name:   "timeline",
				Usage:  "Print the chronological case timeline",
				Action: timelineCommand,
				Flags: append(libraryFlags(),
					&cli.Uint64Flag{
						Name:  "doc-id",
						Usage: "Restrict to one document by ID",
					},
					&cli.StringFlag{
						Name:  "filename",
						Usage: "Restrict to documents with this source filename",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func libraryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the registry directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.Float64Flag{
			Name:  "rps",
			Usage: "Embedding request rate limit, requests per second (0 disables)",
		},
	}
}

func openLibrary(c *cli.Context) (*casetrace.Library, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithRequestsPerSecond(c.Float64("rps")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	lib, err := casetrace.Open(c.String("db"), casetrace.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	return lib, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	corpus, err := parseCorpus(c.String("corpus"))
	if err != nil {
		return err
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	pipeline, err := lib.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	for _, path := range c.Args().Slice() {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result, err := pipeline.Ingest(ctx, filepath.Base(path), raw, corpus)
		if err != nil {
			return fmt.Errorf("ingestion of %s failed: %w", path, err)
		}

		fmt.Printf("%s: %s", path, result.Status)
		if result.Status == core.IngestStatusIgnored || result.Status == core.IngestStatusFailed {
			fmt.Printf(" (%s)", result.Reason)
		} else {
			fmt.Printf(" (doc %d, %d chunks)", result.DocumentId, result.ChunkCount)
		}
		fmt.Println()
	}
	return nil
}

func crawlCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one plain-text file is required")
	}

	raw, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.Args().First(), err)
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	pipeline, err := lib.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	result, err := pipeline.IngestCrawled(context.Background(), c.String("case-id"), string(raw), c.String("url"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("case %s: %s (doc %d, %d chunks)\n",
		c.String("case-id"), result.Status, result.DocumentId, result.ChunkCount)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one query argument is required")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx := context.Background()
	if err := lib.RebuildIndex(ctx); err != nil {
		return fmt.Errorf("failed to rebuild vector index: %w", err)
	}

	retriever, err := lib.NewRetriever()
	if err != nil {
		return fmt.Errorf("failed to create retriever: %w", err)
	}

	filter := &search.Filter{
		Citation: c.String("citation"),
		Section:  c.String("section"),
		Party:    c.String("party"),
		Judge:    c.String("judge"),
	}
	if ts := c.Timestamp("from"); ts != nil {
		filter.DateFrom = *ts
	}
	if ts := c.Timestamp("to"); ts != nil {
		filter.DateTo = *ts
	}

	results, err := retriever.Search(ctx, c.Args().First(), c.Int("k"), filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, r := range results {
		snippet := strings.Join(strings.Fields(r.Text), " ")
		if len(snippet) > 160 {
			snippet = snippet[:160] + "..."
		}
		fmt.Printf("%2d. [%.3f] %s doc=%d chunk=%d\n    %s\n",
			i+1, r.Score, r.Corpus, r.Metadata.DocumentId, r.Metadata.ChunkIndex, snippet)
	}
	return nil
}

func graphCommand(c *cli.Context) error {
	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	builder, err := lib.NewGraphBuilder()
	if err != nil {
		return fmt.Errorf("failed to create graph builder: %w", err)
	}

	g, err := builder.Build(context.Background(), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	fmt.Printf("nodes (%d):\n", len(g.Nodes))
	for _, n := range g.Nodes {
		fmt.Printf("  %-10s %-50s %d docs\n", n.Type, n.Value, n.Count)
	}
	fmt.Printf("edges (%d):\n", len(g.Edges))
	for _, e := range g.Edges {
		fmt.Printf("  %s -- %s (weight %d)\n", e.Source, e.Target, e.Weight)
	}
	return nil
}

func timelineCommand(c *cli.Context) error {
	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	builder, err := lib.NewTimelineBuilder()
	if err != nil {
		return fmt.Errorf("failed to create timeline builder: %w", err)
	}

	scope := timeline.Scope{
		DocumentID: core.ID(c.Uint64("doc-id")),
		Filename:   c.String("filename"),
	}
	events, err := builder.Build(context.Background(), scope)
	if err != nil {
		return fmt.Errorf("failed to build timeline: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("no dated events")
		return nil
	}
	for _, e := range events {
		confidence := "low"
		if e.Confidence == core.DateConfidenceHigh {
			confidence = "high"
		}
		fmt.Printf("%s  [%s] %s (doc %d, %q)\n    %s\n",
			e.Date.Format("2006-01-02"), confidence, e.Raw, e.DocumentId, e.Source, e.Snippet)
	}
	return nil
}

func parseCorpus(s string) (core.Corpus, error) {
	switch strings.ToLower(s) {
	case "uploaded", "case_files":
		return core.CorpusUploaded, nil
	case "precedent", "legal_cases":
		return core.CorpusPrecedent, nil
	default:
		return 0, fmt.Errorf("invalid corpus %q: must be uploaded or precedent", s)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
