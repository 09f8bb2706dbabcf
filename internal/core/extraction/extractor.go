// Package extraction turns document text into typed entity mentions and
// relationship assertions by prompting a text-understanding backend per chunk.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openfoia/foiagraph/internal/core/chunking"
	"github.com/openfoia/foiagraph/internal/core/common"
	"github.com/openfoia/foiagraph/internal/core/dedupe"
	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/openfoia/foiagraph/internal/core/summary"
	"github.com/openfoia/foiagraph/internal/llm"
	"github.com/openfoia/foiagraph/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrParse marks a backend reply that held no usable JSON object.
var ErrParse = errors.New("unparseable extraction response")

const (
	defaultConcurrency  = 4
	defaultChunkTimeout = 90 * time.Second
	defaultConfidence   = 0.5
)

type Options struct {
	MaxChars       int
	Concurrency    int
	ChunkTimeout   time.Duration
	PromptTemplate string
	Logger         *zap.Logger
}

type Extractor struct {
	backend      llm.Backend
	splitter     *chunking.Splitter
	concurrency  int
	chunkTimeout time.Duration
	prompt       string
	logger       *zap.Logger
}

func NewExtractor(backend llm.Backend, opts Options) (*Extractor, error) {
	if backend == nil {
		return nil, fmt.Errorf("extraction backend is required")
	}
	prompt := opts.PromptTemplate
	if prompt == "" {
		prompt = DefaultPromptTemplate
	}
	if n := strings.Count(prompt, "%s"); n != 3 {
		return nil, fmt.Errorf("prompt template needs 3 %%s verbs (context, page, text), found %d", n)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.ChunkTimeout <= 0 {
		opts.ChunkTimeout = defaultChunkTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		backend:      backend,
		splitter:     chunking.NewSplitter(opts.MaxChars),
		concurrency:  opts.Concurrency,
		chunkTimeout: opts.ChunkTimeout,
		prompt:       prompt,
		logger:       logger,
	}, nil
}

// ChunkResult is the outcome of one backend call. Err records why the chunk
// degraded to an empty result; it is informational only.
type ChunkResult struct {
	Entities      []*model.ExtractedEntity
	Relationships []model.RelationshipAssertion
	Err           error
}

type chunkJob struct {
	text string
	page *int
}

// Extract splits text into chunks and extracts each of them. pageNumbers[i],
// when present, is attached to every mention of chunk i. Backend and parse
// failures reduce the affected chunk to an empty result.
func (e *Extractor) Extract(ctx context.Context, text, docContext string, pageNumbers []int) *model.ExtractionResult {
	chunks := e.splitter.Split(text)
	jobs := make([]chunkJob, len(chunks))
	for i, c := range chunks {
		jobs[i] = chunkJob{text: c}
		if i < len(pageNumbers) {
			p := pageNumbers[i]
			jobs[i].page = &p
		}
	}
	return e.run(ctx, jobs, docContext, utf8.RuneCountInString(text))
}

// ExtractPages splits every page on its own so each chunk carries the page
// it came from.
func (e *Extractor) ExtractPages(ctx context.Context, pages []model.Page, docContext string) *model.ExtractionResult {
	var jobs []chunkJob
	total := 0
	for _, pg := range pages {
		total += utf8.RuneCountInString(pg.Text)
		for _, c := range e.splitter.Split(pg.Text) {
			p := pg.Number
			jobs = append(jobs, chunkJob{text: c, page: &p})
		}
	}
	return e.run(ctx, jobs, docContext, total)
}

func (e *Extractor) run(ctx context.Context, jobs []chunkJob, docContext string, totalChars int) *model.ExtractionResult {
	results := make([]ChunkResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			chunkCtx, cancel := context.WithTimeout(gctx, e.chunkTimeout)
			defer cancel()
			results[i] = e.extractChunk(chunkCtx, i, job.text, docContext, job.page)
			return nil
		})
	}
	_ = g.Wait()

	var (
		entities []*model.ExtractedEntity
		rels     []model.RelationshipAssertion
		failed   int
	)
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		entities = append(entities, r.Entities...)
		rels = append(rels, r.Relationships...)
	}

	merged := dedupe.MergeEntities(entities)
	if rels == nil {
		rels = []model.RelationshipAssertion{}
	}

	if failed > 0 {
		e.logger.Warn("Extraction completed with failed chunks",
			zap.Int("failed", failed),
			zap.Int("total", len(jobs)),
			zap.String("backend", e.backend.Name()))
	}

	return &model.ExtractionResult{
		Entities:      merged,
		Relationships: rels,
		Summary:       summary.Summarize(merged, rels),
		Metadata: model.ExtractionMetadata{
			ChunksProcessed: len(jobs),
			ChunksFailed:    failed,
			TotalChars:      totalChars,
			Model:           e.backend.Name(),
		},
	}
}

// ExtractChunk runs a single chunk through the backend.
func (e *Extractor) ExtractChunk(ctx context.Context, chunk, docContext string, page *int) ChunkResult {
	return e.extractChunk(ctx, 0, chunk, docContext, page)
}

func (e *Extractor) extractChunk(ctx context.Context, index int, chunk, docContext string, page *int) ChunkResult {
	if strings.TrimSpace(chunk) == "" {
		return ChunkResult{}
	}
	log := e.logger.With(zap.Int("chunk", index), zap.String("backend", e.backend.Name()))

	start := time.Now()
	response, err := e.backend.Generate(ctx, e.buildPrompt(chunk, docContext, page))
	metrics.BackendLatency.WithLabelValues(e.backend.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChunksTotal.WithLabelValues("backend_error").Inc()
		log.Warn("Backend call failed, chunk skipped", zap.Error(err))
		return ChunkResult{Err: fmt.Errorf("failed to generate entities: %w", err)}
	}

	parsed, err := common.ParseJSON[chunkResponse](response)
	if err != nil {
		metrics.ChunksTotal.WithLabelValues("parse_error").Inc()
		log.Warn("Unparseable backend response, chunk skipped", zap.Error(err))
		return ChunkResult{Err: fmt.Errorf("%w: %v", ErrParse, err)}
	}
	metrics.ChunksTotal.WithLabelValues("ok").Inc()

	result := ChunkResult{}
	for _, item := range parsed.Entities {
		var raw rawEntity
		if err := json.Unmarshal(item, &raw); err != nil {
			metrics.DroppedEntities.Inc()
			log.Debug("Dropped malformed entity", zap.ByteString("entity", item), zap.Error(err))
			continue
		}
		ent, ok := raw.toEntity(page)
		if !ok {
			metrics.DroppedEntities.Inc()
			log.Debug("Dropped entity with unrecognised type",
				zap.String("type", string(raw.Type)),
				zap.String("raw_text", string(raw.RawText)))
			continue
		}
		result.Entities = append(result.Entities, ent)
	}
	for _, item := range parsed.Relationships {
		var raw rawRelationship
		if err := json.Unmarshal(item, &raw); err != nil {
			log.Debug("Dropped malformed relationship", zap.ByteString("relationship", item), zap.Error(err))
			continue
		}
		rel, ok := raw.toAssertion(page)
		if !ok {
			continue
		}
		result.Relationships = append(result.Relationships, rel)
	}
	return result
}

func (e *Extractor) buildPrompt(chunk, docContext string, page *int) string {
	if strings.TrimSpace(docContext) == "" {
		docContext = defaultDocContext
	}
	pageLabel := unknownPage
	if page != nil {
		pageLabel = strconv.Itoa(*page)
	}
	return fmt.Sprintf(e.prompt, docContext, pageLabel, chunk)
}
