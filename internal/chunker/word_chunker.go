package chunker

import "strings"

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 100
)

// WordChunker splits text into fixed-size word windows with overlap.
type WordChunker struct {
	chunkSize int
	overlap   int
}

func NewWordChunker(chunkSize, overlap int) *WordChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &WordChunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk emits a window of chunkSize words at every stride of chunkSize-overlap
// words. The last windows are cut short at the end of the text.
func (c *WordChunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	stride := c.chunkSize - c.overlap
	chunks := make([]string, 0, len(words)/stride+1)
	for i := 0; i < len(words); i += stride {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		piece := strings.Join(words[i:end], " ")
		if strings.TrimSpace(piece) == "" {
			continue
		}
		chunks = append(chunks, piece)
	}
	return chunks
}
