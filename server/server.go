// Package server exposes the chunking engine over HTTP.
package server

import (
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"documents-chunker/cache"
	"documents-chunker/chunking"
	"documents-chunker/config"
	"documents-chunker/pkg/errors"
	"documents-chunker/pkg/logger"
	"documents-chunker/reader"
)

// ChunkerFactory builds a boundary strategy by name with the given options.
// Unknown strategy names return an InvalidArgument error.
type ChunkerFactory func(strategy string, opts *chunking.Options) (chunking.Chunker, error)

// Server wires the HTTP handlers, metrics and optional result cache.
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	factory ChunkerFactory
	cache   *cache.ResultCache
	log     *logger.Logger
	metrics *Metrics
}

// ChunkRequest is the POST /chunk request body.
type ChunkRequest struct {
	Content       string `json:"content"`
	Format        string `json:"format,omitempty"`
	Strategy      string `json:"strategy,omitempty"`
	MaxTokens     int    `json:"max_tokens,omitempty"`
	OverlapTokens int    `json:"overlap_tokens,omitempty"`
	DocumentID    string `json:"document_id,omitempty"`
}

// New creates the server. resultCache may be nil when caching is disabled.
func New(cfg *config.Config, factory ChunkerFactory, resultCache *cache.ResultCache, log *logger.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		DisableStartupMessage: cfg.IsProduction(),
	})

	s := &Server{
		app:     app,
		cfg:     cfg,
		factory: factory,
		cache:   resultCache,
		log:     log.WithComponent("server"),
		metrics: NewMetrics("documents"),
	}

	app.Post("/chunk", s.handleChunk)
	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return s
}

// Listen starts serving on the configured port.
func (s *Server) Listen() error {
	s.log.Info().Str("port", s.cfg.Server.Port).Msg("Starting HTTP server")
	return s.app.Listen(":" + s.cfg.Server.Port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleChunk(c *fiber.Ctx) error {
	start := time.Now()

	var req ChunkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content is required",
		})
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = "header"
	}

	maxTokens := s.cfg.Chunking.MaxTokensPerChunk
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	overlap := s.cfg.Chunking.OverlapTokens
	if req.OverlapTokens > 0 {
		overlap = req.OverlapTokens
	} else if overlap >= maxTokens {
		// An inherited overlap that no longer fits the requested budget
		// scales down to the default 1:4 ratio instead of failing.
		overlap = maxTokens / 4
	}
	opts, err := buildOptions(maxTokens, overlap)
	if err != nil {
		return s.fail(c, strategy, start, err)
	}

	key := cache.Key(strategy, opts.MaxTokensPerChunk(), opts.OverlapTokens(), req.Content)
	if s.cache != nil {
		cached, err := s.cache.Get(c.Context(), key)
		if err != nil {
			s.log.Warn().Err(err).Msg("Cache lookup failed")
		} else if cached != nil {
			s.observe(strategy, "hit", start, len(cached.Chunks))
			return c.JSON(cached)
		}
	}

	format := reader.Format(req.Format)
	if format == "" {
		format = reader.FormatMarkdown
	}
	doc, err := reader.Parse([]byte(req.Content), format, req.DocumentID)
	if err != nil {
		return s.fail(c, strategy, start, err)
	}

	chunker, err := s.factory(strategy, opts)
	if err != nil {
		return s.fail(c, strategy, start, err)
	}

	chunks, err := chunker.Process(c.Context(), doc)
	if err != nil {
		return s.fail(c, strategy, start, err)
	}
	result := chunking.NewResult(chunks)

	if s.cache != nil {
		if err := s.cache.Set(c.Context(), key, result); err != nil {
			s.log.Warn().Err(err).Msg("Cache write failed")
		}
	}

	s.log.Info().
		Str("strategy", strategy).
		Int("chunks", result.TotalChunks).
		Dur("duration", time.Since(start)).
		Msg("Document chunked")

	s.observe(strategy, "success", start, result.TotalChunks)
	return c.JSON(result)
}

// buildOptions resets the overlap before applying the budget so a small
// budget is never rejected against the stale default overlap.
func buildOptions(maxTokens, overlap int) (*chunking.Options, error) {
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

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   "documents-chunker",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"cache":     s.cache != nil,
	})
}

// fail maps engine errors onto HTTP status codes and records the failure.
func (s *Server) fail(c *fiber.Ctx, strategy string, start time.Time, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.IsType(err, errors.InvalidArgument):
		status = fiber.StatusBadRequest
	case errors.IsType(err, errors.BudgetExceeded):
		status = fiber.StatusUnprocessableEntity
	case errors.IsType(err, errors.ExternalCallFailure):
		status = fiber.StatusBadGateway
	}

	s.log.Error().Err(err).Str("strategy", strategy).Msg("Chunking request failed")
	s.observe(strategy, "error", start, 0)

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (s *Server) observe(strategy, status string, start time.Time, chunks int) {
	s.metrics.Requests.WithLabelValues(strategy, status).Inc()
	s.metrics.Duration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	if chunks > 0 {
		s.metrics.Chunks.WithLabelValues(strategy).Add(float64(chunks))
	}
}
