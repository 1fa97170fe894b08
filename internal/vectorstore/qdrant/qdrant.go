package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resumerag/internal/domain"
)

// Storage is a minimal REST client to Qdrant.
// Init recreates the collection with Euclid distance so every upload starts empty.
type Storage struct {
	url        string
	apiKey     string
	collection string
	timeout    time.Duration
	client     *client.Client

	dimension int
	count     int
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) (*Storage, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	c, err := client.NewClient(client.WithDialTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("create qdrant http client: %w", err)
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		timeout:    timeout,
		client:     c,
	}, nil
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	if err := s.Clear(); err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Euclid",
		},
	}
	if err := s.do(consts.MethodPut, s.collectionURL(""), body, nil); err != nil {
		return err
	}
	s.dimension = dimension
	s.count = 0
	return nil
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		points[i] = map[string]any{
			"id":     s.count + i,
			"vector": vectors[i],
			"payload": map[string]any{
				"section": chunks[i].Section,
				"index":   chunks[i].Index,
				"content": chunks[i].Content,
			},
		}
	}
	body := map[string]any{"points": points}
	if err := s.do(consts.MethodPut, s.collectionURL("/points?wait=true"), body, nil); err != nil {
		return err
	}
	s.count += len(chunks)
	return nil
}

func (s *Storage) Search(vector []float32, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 || s.count == 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(vector), s.dimension)
	}
	// Ask for every point: a tie at position k must still resolve to the
	// earliest-inserted chunk, which Qdrant may have cut off.
	req := map[string]any{
		"vector":       vector,
		"limit":        s.count,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload struct {
				Section string `json:"section"`
				Index   int    `json:"index"`
				Content string `json:"content"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(consts.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{
			Chunk: domain.Chunk{
				Section: r.Payload.Section,
				Index:   r.Payload.Index,
				Content: r.Payload.Content,
			},
			// Euclid score is the plain distance.
			Distance: r.Score * r.Score,
		})
	}
	// Qdrant does not promise an order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *Storage) Len() int { return s.count }

// Clear drops the collection. A missing collection is not an error.
func (s *Storage) Clear() error {
	err := s.do(consts.MethodDelete, s.collectionURL(""), nil, nil)
	var se *statusError
	if err != nil && !(errors.As(err, &se) && se.code == consts.StatusNotFound) {
		return err
	}
	s.count = 0
	return nil
}

type statusError struct {
	method string
	url    string
	code   int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: status %d", e.method, e.url, e.code)
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Storage) do(method, url string, body, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(method)
	req.SetRequestURI(url)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(data)
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	if err := s.client.DoTimeout(context.Background(), req, resp, s.timeout); err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	if resp.StatusCode() >= 300 {
		return &statusError{method: method, url: url, code: resp.StatusCode()}
	}
	if out != nil {
		return json.Unmarshal(resp.Body(), out)
	}
	return nil
}
