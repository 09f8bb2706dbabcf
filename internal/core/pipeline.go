// Package core runs documents through extraction, linking and redaction
// analysis and hands the results to the configured stores.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openfoia/foiagraph/internal/core/community"
	"github.com/openfoia/foiagraph/internal/core/extraction"
	"github.com/openfoia/foiagraph/internal/core/linking"
	"github.com/openfoia/foiagraph/internal/core/model"
	"github.com/openfoia/foiagraph/internal/core/redaction"
	"github.com/openfoia/foiagraph/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoGraphStore    = errors.New("no graph store configured")
	ErrNoDocumentStore = errors.New("no document store configured")
	ErrUnknownEntity   = errors.New("unknown canonical entity")
)

type DocumentStore interface {
	SaveDocument(ctx context.Context, rec model.DocumentRecord) error
	GetDocument(ctx context.Context, id string) (*model.DocumentRecord, error)
	DocumentsMentioning(ctx context.Context, canonicalID string) ([]string, error)
}

type GraphStore interface {
	SaveGraph(ctx context.Context, export model.GraphExport) error
	SaveDocumentMentions(ctx context.Context, rec model.DocumentRecord) error
	LoadGraph(ctx context.Context) (model.GraphExport, error)
}

type Options struct {
	// DefaultConfidence grades links backed by evidence text. Defaults to probable.
	DefaultConfidence model.ConfidenceLevel
	// BulkConcurrency bounds documents analysed at once by ProcessBatch.
	BulkConcurrency int
	Documents       DocumentStore
	Graph           GraphStore
	Communities     community.Detector
	Logger          *zap.Logger
	Now             func() time.Time
}

type Pipeline struct {
	Extractor *extraction.Extractor
	Linker    *linking.Linker
	Redaction *redaction.Detector

	documents    DocumentStore
	graph        GraphStore
	communities  community.Detector
	defaultLevel model.ConfidenceLevel
	concurrency  int
	logger       *zap.Logger
	now          func() time.Time

	mu      sync.Mutex
	pending []model.DocumentRecord // mentions not yet written to the graph store
}

// DocumentResult is what processing one document produced.
type DocumentResult struct {
	Record        model.DocumentRecord          `json:"record"`
	Relationships []model.RelationshipAssertion `json:"relationships"`
	Links         []model.Link                  `json:"links"`
	// Unresolved counts relationship assertions whose endpoints did not match
	// any mention of the document.
	Unresolved int `json:"unresolved_relationships"`
}

func NewPipeline(ex *extraction.Extractor, linker *linking.Linker, detector *redaction.Detector, opts Options) *Pipeline {
	if opts.DefaultConfidence == "" {
		opts.DefaultConfidence = model.ConfidenceProbable
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = 4
	}
	if opts.Communities == nil {
		opts.Communities = community.NewLabelPropagationDetector()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		Extractor:    ex,
		Linker:       linker,
		Redaction:    detector,
		documents:    opts.Documents,
		graph:        opts.Graph,
		communities:  opts.Communities,
		defaultLevel: opts.DefaultConfidence,
		concurrency:  opts.BulkConcurrency,
		logger:       opts.Logger,
		now:          opts.Now,
	}
}

type analysis struct {
	extraction *model.ExtractionResult
	redaction  model.RedactionSummary
}

// ProcessDocument extracts, links and analyses one document and persists the
// record when stores are configured.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc model.Document) (*DocumentResult, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	a, err := p.analyze(ctx, doc)
	if err != nil {
		metrics.DocumentsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	return p.commit(ctx, doc, a)
}

// ProcessBatch analyses documents concurrently, then links them one at a time
// in submission order so canonical grouping does not depend on timing.
// Results align with docs; a failed document leaves a nil entry and
// contributes to the joined error.
func (p *Pipeline) ProcessBatch(ctx context.Context, docs []model.Document) ([]*DocumentResult, error) {
	analyses := make([]*analysis, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := validateDocument(doc); err != nil {
				errs[i] = err
				return nil
			}
			a, err := p.analyze(gctx, doc)
			if err != nil {
				errs[i] = err
				return nil
			}
			analyses[i] = a
			return nil
		})
	}
	_ = g.Wait()

	results := make([]*DocumentResult, len(docs))
	for i, doc := range docs {
		if errs[i] != nil {
			metrics.DocumentsTotal.WithLabelValues("error").Inc()
			p.logger.Warn("Document analysis failed", zap.String("doc_id", doc.ID), zap.Error(errs[i]))
			continue
		}
		res, err := p.commit(ctx, doc, analyses[i])
		if err != nil {
			errs[i] = err
			continue
		}
		results[i] = res
	}

	var joined []error
	for i, err := range errs {
		if err != nil {
			joined = append(joined, fmt.Errorf("document %d (%s): %w", i, docs[i].ID, err))
		}
	}
	return results, errors.Join(joined...)
}

func validateDocument(doc model.Document) error {
	if strings.TrimSpace(doc.ID) == "" {
		return errors.New("document id is required")
	}
	return nil
}

// analyze runs the parts that touch no shared state.
func (p *Pipeline) analyze(ctx context.Context, doc model.Document) (*analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := doc.Text
	var res *model.ExtractionResult
	if len(doc.Pages) > 0 {
		res = p.Extractor.ExtractPages(ctx, doc.Pages, doc.Context)
		if text == "" {
			text = joinPages(doc.Pages)
		}
	} else {
		res = p.Extractor.Extract(ctx, text, doc.Context, nil)
	}
	// Chunks fail soft on cancellation; an empty result must not be committed.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extraction interrupted: %w", err)
	}

	var images redaction.PageImageSource
	if doc.ImageDir != "" {
		images = p.Redaction.DirPages(doc.ImageDir)
	}
	summary, err := p.Redaction.Analyze(ctx, text, images)
	if err != nil {
		// text citations are still valid without the visual estimate
		p.logger.Warn("Visual redaction analysis failed",
			zap.String("doc_id", doc.ID),
			zap.String("image_dir", doc.ImageDir),
			zap.Error(err))
	}

	return &analysis{extraction: res, redaction: summary}, nil
}

// commit links the document into the shared graph and persists it.
func (p *Pipeline) commit(ctx context.Context, doc model.Document, a *analysis) (*DocumentResult, error) {
	log := p.logger.With(zap.String("doc_id", doc.ID))

	ex := a.extraction
	p.Linker.AddEntities(ex.Entities, doc.ID)
	links, unresolved := p.linkRelationships(ex)
	if unresolved > 0 {
		log.Debug("Relationships with unresolved endpoints", zap.Int("count", unresolved))
	}

	rec := model.DocumentRecord{
		ID:          doc.ID,
		Context:     doc.Context,
		Summary:     ex.Summary,
		Extraction:  ex.Metadata,
		Redaction:   a.redaction,
		Mentions:    ex.Entities,
		ProcessedAt: p.now().UTC(),
	}
	result := &DocumentResult{
		Record:        rec,
		Relationships: ex.Relationships,
		Links:         links,
		Unresolved:    unresolved,
	}

	if p.documents != nil {
		if err := p.documents.SaveDocument(ctx, rec); err != nil {
			metrics.DocumentsTotal.WithLabelValues("error").Inc()
			return result, fmt.Errorf("failed to save document record: %w", err)
		}
	}

	if p.graph != nil {
		p.mu.Lock()
		p.pending = append(p.pending, rec)
		p.mu.Unlock()
	}

	metrics.DocumentsTotal.WithLabelValues("success").Inc()
	log.Info("Processed document",
		zap.Int("entities", len(ex.Entities)),
		zap.Int("links", len(links)),
		zap.Int("chunks", ex.Metadata.ChunksProcessed),
		zap.Int("chunks_failed", ex.Metadata.ChunksFailed),
		zap.Int("exemption_citations", a.redaction.TotalExemptionCitations))
	return result, nil
}

// linkRelationships resolves assertion endpoints against this document's
// mentions and records a link per resolved assertion.
func (p *Pipeline) linkRelationships(ex *model.ExtractionResult) ([]model.Link, int) {
	index := make(map[string]string)
	add := func(text, id string) {
		key := strings.ToLower(strings.TrimSpace(text))
		if key == "" {
			return
		}
		if _, exists := index[key]; !exists {
			index[key] = id
		}
	}
	for _, e := range ex.Entities {
		id := e.MetaString(model.MetaCanonicalID)
		add(e.NormalizedText, id)
		add(e.RawText, id)
	}
	// Aliases of the canonicals this document touches catch spelling variants.
	for _, e := range ex.Entities {
		id := e.MetaString(model.MetaCanonicalID)
		if c, ok := p.Linker.Canonical(id); ok {
			for _, alias := range c.Aliases {
				add(alias, id)
			}
		}
	}

	var links []model.Link
	unresolved := 0
	for _, r := range ex.Relationships {
		src, okSrc := index[strings.ToLower(r.Source)]
		tgt, okTgt := index[strings.ToLower(r.Target)]
		if !okSrc || !okTgt {
			unresolved++
			continue
		}
		level := p.defaultLevel
		if strings.TrimSpace(r.Evidence) == "" {
			level = model.ConfidencePossible
		}
		p.Linker.LinkEntities(src, tgt, r.Relation, level, r.Evidence)
		links = append(links, model.Link{
			Source:     src,
			Target:     tgt,
			Relation:   r.Relation,
			Confidence: level,
			Evidence:   r.Evidence,
		})
	}
	return links, unresolved
}

func joinPages(pages []model.Page) string {
	texts := make([]string, len(pages))
	for i, pg := range pages {
		texts[i] = pg.Text
	}
	return strings.Join(texts, "\n\n")
}

// ExportGraph returns the current canonical graph.
func (p *Pipeline) ExportGraph() model.GraphExport {
	return p.Linker.ExportGraph()
}

// SaveGraph writes the current graph to the graph store, followed by the
// mentions of documents processed since the last save.
func (p *Pipeline) SaveGraph(ctx context.Context) error {
	if p.graph == nil {
		return ErrNoGraphStore
	}
	if err := p.graph.SaveGraph(ctx, p.ExportGraph()); err != nil {
		return err
	}

	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for i, rec := range pending {
		if err := p.graph.SaveDocumentMentions(ctx, rec); err != nil {
			p.mu.Lock()
			p.pending = append(pending[i:], p.pending...)
			p.mu.Unlock()
			return err
		}
	}
	return nil
}

// RestoreGraph seeds the linker from the graph store so canonical ids carry
// over between runs. It must run before the first document is processed.
func (p *Pipeline) RestoreGraph(ctx context.Context) error {
	if p.graph == nil {
		return ErrNoGraphStore
	}
	graph, err := p.graph.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	return p.Linker.Restore(graph)
}

// DocumentsMentioning lists the ids of processed documents that mention the
// canonical entity.
func (p *Pipeline) DocumentsMentioning(ctx context.Context, canonicalID string) ([]string, error) {
	if p.documents == nil {
		return nil, ErrNoDocumentStore
	}
	if _, ok := p.Linker.Canonical(canonicalID); !ok {
		return nil, ErrUnknownEntity
	}
	return p.documents.DocumentsMentioning(ctx, canonicalID)
}

// GetDocument loads a processed document record.
func (p *Pipeline) GetDocument(ctx context.Context, id string) (*model.DocumentRecord, error) {
	if p.documents == nil {
		return nil, ErrNoDocumentStore
	}
	return p.documents.GetDocument(ctx, id)
}

// Communities clusters the current graph for reporting.
func (p *Pipeline) Communities() []model.Community {
	return p.communities.Detect(p.ExportGraph())
}
