package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"drheal-be/internal/bootstrap"
	"drheal-be/internal/config"
	"drheal-be/internal/pkg/logger"
	"drheal-be/pkg/database"
	"drheal-be/pkg/embedding"
	"drheal-be/pkg/events"
	"drheal-be/pkg/knowledge"
	"drheal-be/pkg/metrics"
	pktNats "drheal-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type options struct {
	reset   bool
	dataDir string
	notify  bool
	timeout time.Duration
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "ingest",
		Short:         "Load the medical knowledge files into the vector store",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := run(cmd.Context(), opts); err != nil {
				color.Red("✗ %v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "clear the vector store before loading")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "knowledge directory (defaults to KNOWLEDGE_DATA_DIR)")
	cmd.Flags().BoolVar(&opts.notify, "notify", true, "publish knowledge.ingested to NATS when done")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Minute, "overall load timeout")
	return cmd
}

func run(parent context.Context, opts *options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, opts.timeout)
	defer cancel()

	cfg := config.Load()
	if opts.dataDir != "" {
		cfg.Knowledge.DataDir = opts.dataDir
	}
	if cfg.Knowledge.VectorStore == "memory" {
		return fmt.Errorf("VECTOR_STORE=memory is process-local; ingest needs pgvector")
	}
	if cfg.Database.Connection == "" {
		return fmt.Errorf("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, "production")
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = sysLogger.Sync() }()

	embedder := embedding.NewCachedProvider(bootstrap.NewEmbeddingProvider(cfg), nil, 0, sysLogger)
	index := bootstrap.NewIndex(db, cfg)
	loader := knowledge.NewLoader(cfg.Knowledge.DataDir, embedder, index, sysLogger, metrics.New())

	color.Cyan("Loading knowledge from %s (reset=%t)", cfg.Knowledge.DataDir, opts.reset)
	started := time.Now()
	result, err := loader.Load(ctx, opts.reset)
	if err != nil {
		return err
	}

	printSummary(result, time.Since(started))

	if result.Skipped() || !opts.notify {
		return nil
	}
	return notify(ctx, cfg.App.NatsURL, result)
}

func printSummary(result knowledge.Result, elapsed time.Duration) {
	if result.Skipped() {
		color.Yellow("Vector store already holds %d documents, nothing loaded (use --reset to reload)", result.AlreadyLoaded)
		return
	}
	summary := result.Summary()
	keys := make([]string, 0, len(summary))
	for k := range summary {
		if k != "total" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	bold := color.New(color.Bold)
	for _, k := range keys {
		fmt.Printf("  %-20s %s\n", k, bold.Sprint(summary[k]))
	}
	color.Green("✓ %d documents in the vector store (%s)", summary["total"], elapsed.Round(time.Millisecond))
}

func notify(ctx context.Context, url string, result knowledge.Result) error {
	pub, err := pktNats.NewPublisher(url)
	if err != nil {
		color.Yellow("NATS unavailable, search caches will expire on their own: %v", err)
		return nil
	}
	defer pub.Close()

	if err := pub.Publish(ctx, events.NewKnowledgeIngested(result.Summary())); err != nil {
		return fmt.Errorf("publish %s: %w", events.TypeKnowledgeIngested, err)
	}
	color.Green("✓ Published %s", events.TypeKnowledgeIngested)
	return nil
}
