package domain

import "context"

// Section is one named block of résumé text as produced by the parser.
type Section struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// ParsedDocument is the parser output the engine indexes. Sections keep
// the order they were found in so chunk order is reproducible.
type ParsedDocument struct {
	Sections      []Section         `json:"sections"`
	ExtractedInfo map[string]string `json:"extracted_info"`
}

// Section returns the text stored under name.
func (d *ParsedDocument) Section(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	for _, s := range d.Sections {
		if s.Name == name {
			return s.Text, true
		}
	}
	return "", false
}

// SectionNames lists section names in document order.
func (d *ParsedDocument) SectionNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		names = append(names, s.Name)
	}
	return names
}

// Clone returns a deep copy so the engine never shares maps with callers.
func (d *ParsedDocument) Clone() *ParsedDocument {
	if d == nil {
		return nil
	}
	out := &ParsedDocument{
		Sections:      append([]Section(nil), d.Sections...),
		ExtractedInfo: make(map[string]string, len(d.ExtractedInfo)),
	}
	for k, v := range d.ExtractedInfo {
		out.ExtractedInfo[k] = v
	}
	return out
}

// Chunk is a word window of a single section used for retrieval.
type Chunk struct {
	Section string `json:"section"`
	Content string `json:"content"`
	Index   int    `json:"index"`
}

// SearchResult is an indexed chunk with its squared Euclidean distance to the query.
type SearchResult struct {
	Chunk    Chunk
	Distance float64
}

// Embedder converts free text into a fixed-dimension vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) []float32
}

// Chunker splits section text into overlapping pieces.
type Chunker interface {
	Chunk(text string) []string
}

// VectorStore holds chunk vectors and answers nearest-neighbour queries.
type VectorStore interface {
	Init(dimension int) error
	Upsert(chunks []Chunk, vectors [][]float32) error
	Search(vector []float32, topK int) ([]SearchResult, error)
	Len() int
	Clear() error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) string
}

// Generator is the external language model.
type Generator interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
