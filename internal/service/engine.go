package service

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"resumerag/internal/domain"
	"resumerag/internal/logger"
)

const (
	defaultAutofillTopK        = 5
	defaultHRTopK              = 5
	defaultSummaryMaxSentences = 3

	summarySection = "summary"
	rawTextSection = "raw_text"
)

// Options tunes retrieval depth and summary length.
type Options struct {
	AutofillTopK        int
	HRTopK              int
	SummaryMaxSentences int
}

func (o *Options) applyDefaults() {
	if o.AutofillTopK <= 0 {
		o.AutofillTopK = defaultAutofillTopK
	}
	if o.HRTopK <= 0 {
		o.HRTopK = defaultHRTopK
	}
	if o.SummaryMaxSentences <= 0 {
		o.SummaryMaxSentences = defaultSummaryMaxSentences
	}
}

// Engine owns the indexed résumé and answers form and HR requests against it.
// Everything mutable sits behind mu; only Index takes the write lock.
type Engine struct {
	chunker    domain.Chunker
	embedder   domain.Embedder
	store      domain.VectorStore
	summarizer domain.Summarizer
	generator  domain.Generator
	log        *zap.Logger
	opts       Options

	mu          sync.RWMutex
	doc         *domain.ParsedDocument
	chunks      []domain.Chunk
	summary     string
	initialized bool
}

func NewEngine(
	chunker domain.Chunker,
	embedder domain.Embedder,
	store domain.VectorStore,
	summarizer domain.Summarizer,
	generator domain.Generator,
	log *zap.Logger,
	opts Options,
) *Engine {
	opts.applyDefaults()
	return &Engine{
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		summarizer: summarizer,
		generator:  generator,
		log:        logger.OrNop(log),
		opts:       opts,
	}
}

// IndexReport describes the index a successful Index call installed.
type IndexReport struct {
	ChunkCount int
	Summary    string
}

// IndexResume replaces the indexed résumé with doc. A document without any
// text is rejected with ErrEmptyDocument and the previous index stays live.
func (e *Engine) IndexResume(doc *domain.ParsedDocument) error {
	_, err := e.Index(doc)
	return err
}

// Index is IndexResume that also reports what it built, so callers never
// need a second read that a concurrent upload could overtake.
func (e *Engine) Index(doc *domain.ParsedDocument) (IndexReport, error) {
	if doc == nil {
		return IndexReport{}, ErrEmptyDocument
	}
	doc = doc.Clone()

	var chunks []domain.Chunk
	for _, section := range doc.Sections {
		if strings.TrimSpace(section.Text) == "" {
			continue
		}
		for _, piece := range e.chunker.Chunk(section.Text) {
			chunks = append(chunks, domain.Chunk{
				Section: section.Name,
				Content: piece,
				Index:   len(chunks),
			})
		}
	}
	if len(chunks) == 0 {
		return IndexReport{}, ErrEmptyDocument
	}

	vectors := make([][]float32, len(chunks))
	for i, ch := range chunks {
		vectors[i] = e.embedder.Embed(ch.Content)
	}

	summary := ""
	if e.summarizer != nil {
		text, ok := doc.Section(summarySection)
		if !ok || strings.TrimSpace(text) == "" {
			text, _ = doc.Section(rawTextSection)
		}
		summary = e.summarizer.Summarize(text, e.opts.SummaryMaxSentences)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Init(e.embedder.Dimension()); err != nil {
		e.reset()
		return IndexReport{}, fmt.Errorf("init vector store: %w", err)
	}
	if err := e.store.Upsert(chunks, vectors); err != nil {
		e.reset()
		return IndexReport{}, fmt.Errorf("upsert chunks: %w", err)
	}

	e.doc = doc
	e.chunks = chunks
	e.summary = summary
	e.initialized = true

	e.log.Info("resume indexed",
		zap.Int("sections", len(doc.Sections)),
		zap.Int("chunks", len(chunks)),
		zap.String("embedder", e.embedder.Name()),
	)
	return IndexReport{ChunkCount: len(chunks), Summary: summary}, nil
}

// reset drops engine state after the store was left half-built. Caller holds mu.
func (e *Engine) reset() {
	_ = e.store.Clear()
	e.doc = nil
	e.chunks = nil
	e.summary = ""
	e.initialized = false
}

// IsInitialized reports whether a résumé has been indexed successfully.
func (e *Engine) IsInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// RetrieveContext returns up to topK chunks nearest to query, closest first.
// It returns nil before the first successful index.
func (e *Engine) RetrieveContext(query string, topK int) []domain.Chunk {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.retrieveLocked(query, topK)
}

func (e *Engine) retrieveLocked(query string, topK int) []domain.Chunk {
	if !e.initialized || topK <= 0 {
		return nil
	}
	results, err := e.store.Search(e.embedder.Embed(query), topK)
	if err != nil {
		e.log.Warn("vector search failed", zap.Error(err))
		return nil
	}
	out := make([]domain.Chunk, 0, len(results))
	for _, r := range results {
		out = append(out, r.Chunk)
	}
	return out
}

// snapshot retrieves context and copies the extracted fields under one read
// lock so a request never mixes two uploads.
func (e *Engine) snapshot(query string, topK int) ([]domain.Chunk, map[string]string) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	chunks := e.retrieveLocked(query, topK)
	var info map[string]string
	if e.doc != nil {
		info = make(map[string]string, len(e.doc.ExtractedInfo))
		for k, v := range e.doc.ExtractedInfo {
			info[k] = v
		}
	}
	return chunks, info
}

func (e *Engine) sectionText(name string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	text, _ := e.doc.Section(name)
	return text
}

// StructuredData exposes section names, extracted fields, chunk count and summary.
func (e *Engine) StructuredData() domain.StructuredData {
	e.mu.RLock()
	defer e.mu.RUnlock()

	data := domain.StructuredData{
		Sections:      []string{},
		ExtractedInfo: map[string]string{},
		ChunkCount:    len(e.chunks),
		Summary:       e.summary,
	}
	if e.doc != nil {
		data.Sections = e.doc.SectionNames()
		for k, v := range e.doc.ExtractedInfo {
			data.ExtractedInfo[k] = v
		}
	}
	return data
}

// Summary returns the extractive summary computed at index time.
func (e *Engine) Summary() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.summary
}

func formatContext(chunks []domain.Chunk) string {
	lines := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		lines = append(lines, "["+ch.Section+"]: "+ch.Content)
	}
	return strings.Join(lines, "\n")
}
