package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"documents-chunker/cache"
	"documents-chunker/chunking"
	"documents-chunker/config"
	"documents-chunker/llm"
	"documents-chunker/pkg/errors"
	"documents-chunker/pkg/logger"
	"documents-chunker/reader"
	"documents-chunker/server"
	"documents-chunker/tokenizer"
)

var (
	version = "1.0.0"

	cfg *config.Config
	log *logger.Logger

	rootCmd = &cobra.Command{
		Use:   "chunker",
		Short: "A CLI tool for document chunking",
		Long:  `Documents Chunker CLI - Split Markdown, HTML and plain-text documents into token-bounded, context-annotated chunks.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
)

func main() {
	cfg = config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var err error
	log, err = logger.New(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		Filename:   cfg.Logging.Filename,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(newChunkCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildChunker constructs the named boundary strategy. Model-backed strategies
// create their OpenAI clients here; everything else works offline.
func buildChunker(strategy string, opts *chunking.Options) (chunking.Chunker, error) {
	tok, err := tokenizer.NewTiktoken(cfg.Chunking.Encoding, cfg.Chunking.Normalize)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(strategy) {
	case "header":
		return chunking.NewHeaderChunker(tok, opts, nil), nil
	case "section":
		return chunking.NewSectionChunker(tok, opts, nil), nil
	case "markdown":
		return chunking.NewMarkdownChunker(tok, opts, nil, cfg.Chunking.MarkdownSplitLevel, cfg.Chunking.StripHeaders), nil
	case "window":
		return chunking.NewTokenWindowChunker(tok, opts), nil
	case "semantic":
		embedder, err := llm.NewOpenAIEmbedder(cfg.Models.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		chunker := chunking.NewSemanticChunker(tok, opts, nil, embedder)
		chunker.Percentile = cfg.Chunking.SemanticPercentile
		return chunker, nil
	case "lumber":
		chat, err := llm.NewOpenAIChat(cfg.Models.ChatModel)
		if err != nil {
			return nil, err
		}
		return chunking.NewLumberChunker(tok, opts, nil, chat), nil
	default:
		return nil, errors.Newf(errors.InvalidArgument, "UNKNOWN_STRATEGY",
			"unknown strategy %q (expected header, section, markdown, window, semantic or lumber)", strategy)
	}
}

func newChunkCommand() *cobra.Command {
	var (
		strategy  string
		maxTokens int
		overlap   int
		outputDir string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "chunk [file]",
		Short: "Chunk a document file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := chunkFile(cmd.Context(), args[0], strategy, maxTokens, overlap)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			if outputDir != "" {
				if err := chunking.SaveChunks(result, outputDir); err != nil {
					return err
				}
				fmt.Printf("Wrote %d chunks to %s\n", result.TotalChunks, outputDir)
				return nil
			}

			for _, chunk := range result.Chunks {
				fmt.Printf("--- chunk %d (%d tokens) ---\n%s\n\n", chunk.ID, chunk.TokenCount, chunk.Content)
			}
			fmt.Printf("Total: %d chunks, %.1f tokens on average\n", result.TotalChunks, result.AverageTokens)
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "header", "Boundary strategy (header, section, markdown, window, semantic, lumber)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Token budget per chunk (default from config)")
	cmd.Flags().IntVar(&overlap, "overlap", -1, "Overlap tokens for the window strategy (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write chunk files to")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func chunkFile(ctx context.Context, path, strategy string, maxTokens, overlap int) (*chunking.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	opts, err := buildOptions(maxTokens, overlap)
	if err != nil {
		return nil, err
	}

	docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := reader.Parse(data, reader.DetectFormat(path, data), docID)
	if err != nil {
		return nil, err
	}

	chunker, err := buildChunker(strategy, opts)
	if err != nil {
		return nil, err
	}

	chunks, err := chunker.Process(ctx, doc)
	if err != nil {
		return nil, err
	}
	return chunking.NewResult(chunks), nil
}

// buildOptions resolves flag overrides against the configured defaults. The
// overlap is reset before the budget is applied so a small budget is never
// rejected against the stale default overlap.
func buildOptions(maxTokens, overlap int) (*chunking.Options, error) {
	if maxTokens <= 0 {
		maxTokens = cfg.Chunking.MaxTokensPerChunk
	}
	if overlap < 0 {
		overlap = cfg.Chunking.OverlapTokens
		// An inherited overlap that no longer fits a smaller budget scales
		// down to the default 1:4 ratio instead of failing.
		if overlap >= maxTokens {
			overlap = maxTokens / 4
		}
	}

	opts := chunking.NewOptions()
	if err := opts.SetOverlapTokens(0); err != nil {
		return nil, err
	}
	if err := opts.SetMaxTokensPerChunk(maxTokens); err != nil {
		return nil, err
	}
	if err := opts.SetOverlapTokens(overlap); err != nil {
		return nil, err
	}
	return opts, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP chunking service",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resultCache *cache.ResultCache
			if cfg.Redis.Enabled {
				var err error
				resultCache, err = cache.New(&cfg.Redis)
				if err != nil {
					log.Warn().Err(err).Msg("Redis not available, continuing without result cache")
				} else {
					defer resultCache.Close()
				}
			}

			srv := server.New(cfg, buildChunker, resultCache, log)

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info().Msg("Shutting down server")
				if err := srv.Shutdown(); err != nil {
					log.Error().Err(err).Msg("Server shutdown failed")
				}
			}()

			return srv.Listen()
		},
	}
}

func newWatchCommand() *cobra.Command {
	var (
		strategy  string
		maxTokens int
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and chunk documents as they appear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer watcher.Close()

			if err := watcher.Add(args[0]); err != nil {
				return fmt.Errorf("failed to watch %s: %w", args[0], err)
			}
			log.Info().Str("dir", args[0]).Msg("Watching for documents")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
						continue
					}
					if !isDocument(event.Name) {
						continue
					}

					result, err := chunkFile(cmd.Context(), event.Name, strategy, maxTokens, -1)
					if err != nil {
						log.Error().Err(err).Str("file", event.Name).Msg("Chunking failed")
						continue
					}

					dest := outputDir
					if dest == "" {
						dest = strings.TrimSuffix(event.Name, filepath.Ext(event.Name)) + "_chunks"
					}
					if err := chunking.SaveChunks(result, dest); err != nil {
						log.Error().Err(err).Str("file", event.Name).Msg("Saving chunks failed")
						continue
					}
					log.Info().
						Str("file", event.Name).
						Int("chunks", result.TotalChunks).
						Str("output", dest).
						Msg("Document chunked")

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Error().Err(err).Msg("Watcher error")

				case <-sigCh:
					log.Info().Msg("Stopping watcher")
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "header", "Boundary strategy")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Token budget per chunk (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write chunk files to")

	return cmd
}

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".html", ".htm", ".txt":
		return true
	}
	return false
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("documents-chunker version %s\n", version)
		},
	}
}
