package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resumerag/internal/chunker"
	"resumerag/internal/domain"
	"resumerag/internal/embedding/hashing"
	"resumerag/internal/parser"
	"resumerag/internal/summarizer"
	"resumerag/internal/vectorstore/memory"
)

type call struct {
	prompt    string
	maxTokens int
}

type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    []call
}

func (g *stubGenerator) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call{prompt: prompt, maxTokens: maxTokens})
	return g.response, g.err
}

func (g *stubGenerator) Calls() []call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]call(nil), g.calls...)
}

const resumeText = `Jane Doe
jane.doe@example.com | +1 555 123 4567
linkedin.com/in/janedoe | github.com/janedoe

Summary
Backend engineer with eight years building Go services. Enjoys distributed systems.

Experience
Acme Corp - Senior Engineer (2019 - Present)
Led migration of billing to Go and cut latency in half.

Education
MIT - BSc Computer Science, 2015

Skills
Go, Kubernetes, PostgreSQL, Kafka
`

func newTestEngine(t *testing.T, gen domain.Generator) *Engine {
	t.Helper()
	return NewEngine(
		chunker.NewWordChunker(500, 100),
		hashing.NewEmbedder(384),
		memory.NewStorage(),
		summarizer.NewFrequencySummarizer(),
		gen,
		zap.NewNop(),
		Options{},
	)
}

func indexedEngine(t *testing.T, gen domain.Generator) *Engine {
	t.Helper()
	e := newTestEngine(t, gen)
	require.NoError(t, e.IndexResume(parser.ParseText(resumeText)))
	return e
}

func TestIndexResume_EmptyDocument(t *testing.T) {
	e := newTestEngine(t, &stubGenerator{})

	err := e.IndexResume(&domain.ParsedDocument{Sections: []domain.Section{
		{Name: "skills", Text: "   "},
		{Name: "raw_text", Text: "\n\t"},
	}})
	require.ErrorIs(t, err, ErrEmptyDocument)
	assert.False(t, e.IsInitialized())

	assert.ErrorIs(t, e.IndexResume(nil), ErrEmptyDocument)
	assert.ErrorIs(t, e.IndexResume(&domain.ParsedDocument{}), ErrEmptyDocument)
}

func TestIndexResume_RejectedUploadKeepsPreviousIndex(t *testing.T) {
	e := indexedEngine(t, &stubGenerator{})
	before := e.StructuredData()

	err := e.IndexResume(&domain.ParsedDocument{Sections: []domain.Section{{Name: "skills", Text: ""}}})
	require.ErrorIs(t, err, ErrEmptyDocument)

	assert.True(t, e.IsInitialized())
	assert.Equal(t, before, e.StructuredData())
	assert.NotEmpty(t, e.RetrieveContext("Go", 3))
}

func TestIndexResume_ReplacesState(t *testing.T) {
	e := indexedEngine(t, &stubGenerator{})

	require.NoError(t, e.IndexResume(&domain.ParsedDocument{
		Sections:      []domain.Section{{Name: "skills", Text: "Rust Haskell"}},
		ExtractedInfo: map[string]string{"email": "other@example.com"},
	}))

	data := e.StructuredData()
	assert.Equal(t, []string{"skills"}, data.Sections)
	assert.Equal(t, 1, data.ChunkCount)
	assert.Equal(t, map[string]string{"email": "other@example.com"}, data.ExtractedInfo)

	chunks := e.RetrieveContext("anything", 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.Chunk{Section: "skills", Content: "Rust Haskell", Index: 0}, chunks[0])
}

func TestIndex_ReportsWhatItInstalled(t *testing.T) {
	e := newTestEngine(t, &stubGenerator{})

	report, err := e.Index(parser.ParseText(resumeText))
	require.NoError(t, err)
	data := e.StructuredData()
	assert.Equal(t, data.ChunkCount, report.ChunkCount)
	assert.Equal(t, data.Summary, report.Summary)
	assert.NotEmpty(t, report.Summary)

	report, err = e.Index(&domain.ParsedDocument{})
	assert.ErrorIs(t, err, ErrEmptyDocument)
	assert.Zero(t, report)
}

func TestIndexResume_ChunksLongSections(t *testing.T) {
	words := make([]string, 900)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	e := newTestEngine(t, &stubGenerator{})
	require.NoError(t, e.IndexResume(&domain.ParsedDocument{Sections: []domain.Section{
		{Name: "experience", Text: strings.Join(words, " ")},
		{Name: "skills", Text: "Go"},
	}}))

	// 900 words at stride 400 give windows starting at 0, 400 and 800.
	assert.Equal(t, 4, e.StructuredData().ChunkCount)
}

func TestRetrieveContext_Uninitialized(t *testing.T) {
	e := newTestEngine(t, &stubGenerator{})
	assert.Empty(t, e.RetrieveContext("email", 3))
}

func TestRetrieveContext_OrderingAndCount(t *testing.T) {
	e := indexedEngine(t, &stubGenerator{})
	emb := hashing.NewEmbedder(384)
	total := e.StructuredData().ChunkCount

	for _, k := range []int{1, 3, total, total + 5} {
		chunks := e.RetrieveContext("Go engineer Kubernetes", k)
		require.Len(t, chunks, min(k, total), "k=%d", k)

		q := emb.Embed("Go engineer Kubernetes")
		prev := -1.0
		for _, ch := range chunks {
			d := squaredDistance(q, emb.Embed(ch.Content))
			assert.GreaterOrEqual(t, d, prev)
			prev = d
		}
	}

	assert.Empty(t, e.RetrieveContext("Go", 0))
}

func TestRetrieveContext_TiesKeepInsertionOrder(t *testing.T) {
	e := newTestEngine(t, &stubGenerator{})
	require.NoError(t, e.IndexResume(&domain.ParsedDocument{Sections: []domain.Section{
		{Name: "first", Text: "same words"},
		{Name: "second", Text: "same words"},
	}}))

	chunks := e.RetrieveContext("unrelated", 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Section)
	assert.Equal(t, "second", chunks[1].Section)
}

func TestStructuredData(t *testing.T) {
	e := newTestEngine(t, &stubGenerator{})
	empty := e.StructuredData()
	assert.Empty(t, empty.Sections)
	assert.Empty(t, empty.ExtractedInfo)
	assert.Zero(t, empty.ChunkCount)

	require.NoError(t, e.IndexResume(parser.ParseText(resumeText)))
	data := e.StructuredData()
	assert.Equal(t, []string{"general", "summary", "experience", "education", "skills", "raw_text"}, data.Sections)
	assert.Equal(t, "jane.doe@example.com", data.ExtractedInfo["email"])
	assert.Equal(t, 6, data.ChunkCount)
	assert.Contains(t, data.Summary, "Backend engineer")

	data.ExtractedInfo["email"] = "mutated"
	assert.Equal(t, "jane.doe@example.com", e.StructuredData().ExtractedInfo["email"])
}

func TestGetAutofillValue_DirectExtraction(t *testing.T) {
	gen := &stubGenerator{response: "should not be used"}
	e := indexedEngine(t, gen)

	tests := []struct {
		label      string
		value      string
		confidence float64
	}{
		{"Email Address", "jane.doe@example.com", 1.0},
		{"Phone number", "+1 555 123 4567", 1.0},
		{"Full Name", "Jane Doe", 0.9},
		{"LinkedIn Profile", "linkedin.com/in/janedoe", 1.0},
		{"GitHub URL", "github.com/janedoe", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			res := e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: tt.label})
			assert.Equal(t, domain.AutofillResult{
				Value:      tt.value,
				Confidence: tt.confidence,
				Source:     domain.SourceDirectExtraction,
			}, res)
		})
	}
	assert.Empty(t, gen.Calls())
}

func TestGetAutofillValue_PriorityOrder(t *testing.T) {
	gen := &stubGenerator{}
	e := newTestEngine(t, gen)
	require.NoError(t, e.IndexResume(&domain.ParsedDocument{
		Sections:      []domain.Section{{Name: "general", Text: "contact details"}},
		ExtractedInfo: map[string]string{"email": "a@b.com", "name": "Jane Doe"},
	}))

	res := e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "Name or email"})
	assert.Equal(t, "a@b.com", res.Value)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestGetAutofillValue_CompoundNameGoesToModel(t *testing.T) {
	gen := &stubGenerator{response: " Jane \n"}
	e := indexedEngine(t, gen)

	res := e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "First Name", FieldType: "text"})
	assert.Equal(t, domain.AutofillResult{Value: "Jane", Confidence: 0.8, Source: domain.SourceLLMGenerated}, res)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 200, calls[0].maxTokens)
	assert.Contains(t, calls[0].prompt, "Form Field: First Name")
	assert.Contains(t, calls[0].prompt, "NEEDS_MANUAL")
	assert.Regexp(t, `(?m)^\[\w+\]: `, calls[0].prompt)
}

func TestGetAutofillValue_MissingKeyFallsThrough(t *testing.T) {
	gen := &stubGenerator{response: "Senior Engineer"}
	e := newTestEngine(t, gen)
	require.NoError(t, e.IndexResume(&domain.ParsedDocument{
		Sections: []domain.Section{{Name: "experience", Text: "Senior Engineer at Acme"}},
	}))

	res := e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "Email"})
	assert.Equal(t, domain.SourceLLMGenerated, res.Source)
	assert.Len(t, gen.Calls(), 1)
}

func TestGetAutofillValue_FieldTypeIsClamped(t *testing.T) {
	gen := &stubGenerator{response: "2019"}
	e := indexedEngine(t, gen)

	e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "Start year", FieldType: "hologram"})
	e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "Start date", FieldType: "DATE"})

	calls := gen.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].prompt, "Field Type: text")
	assert.Contains(t, calls[1].prompt, "Field Type: date")
}

func TestGetAutofillValue_NeedsManual(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"sentinel", "NEEDS_MANUAL"},
		{"lowercase sentinel", "needs_manual"},
		{"embedded sentinel", "I think NEEDS_MANUAL here"},
		{"too long", strings.Repeat("x", 501)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := indexedEngine(t, &stubGenerator{response: tt.response})
			res := e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "Salary"})
			assert.Equal(t, domain.AutofillResult{
				NeedsManual: true,
				Suggestion:  "Please fill 'Salary' manually - AI is unsure",
			}, res)
		})
	}
}

func TestGetAutofillValue_ExactlyMaxLengthIsAccepted(t *testing.T) {
	value := strings.Repeat("é", 500)
	e := indexedEngine(t, &stubGenerator{response: value})
	res := e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "Cover letter"})
	assert.False(t, res.NeedsManual)
	assert.Equal(t, value, res.Value)
}

func TestGetAutofillValue_GeneratorError(t *testing.T) {
	e := indexedEngine(t, &stubGenerator{err: errors.New("rate limited")})
	res := e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "Salary"})
	assert.Equal(t, domain.AutofillResult{NeedsManual: true, Suggestion: "Error: rate limited"}, res)
}

func TestGetAutofillValue_NoContextShortCircuits(t *testing.T) {
	gen := &stubGenerator{response: "x"}
	e := newTestEngine(t, gen)

	res := e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "Email"})
	assert.Equal(t, domain.AutofillResult{
		NeedsManual: true,
		Suggestion:  "Could not find relevant information for 'Email'",
	}, res)
	assert.Empty(t, gen.Calls())
}

func TestAnswerHRQuestion(t *testing.T) {
	gen := &stubGenerator{response: "  I have led Go migrations.  "}
	e := indexedEngine(t, gen)

	res := e.AnswerHRQuestion(context.Background(), domain.HRQuestionRequest{Question: "Why should we hire you?"})
	assert.Equal(t, domain.HRAnswerResult{Answer: "I have led Go migrations.", Confidence: 0.85}, res)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 500, calls[0].maxTokens)
	assert.Contains(t, calls[0].prompt, "Job Context: General job application")
	assert.Contains(t, calls[0].prompt, "HR Question: Why should we hire you?")

	e.AnswerHRQuestion(context.Background(), domain.HRQuestionRequest{Question: "Why us?", JobContext: "Platform team at Initech"})
	assert.Contains(t, gen.Calls()[1].prompt, "Job Context: Platform team at Initech")
}

func TestAnswerHRQuestion_GeneratesWithoutContext(t *testing.T) {
	gen := &stubGenerator{response: "Please share more details."}
	e := newTestEngine(t, gen)

	res := e.AnswerHRQuestion(context.Background(), domain.HRQuestionRequest{Question: "Tell me about yourself"})
	assert.Equal(t, "Please share more details.", res.Answer)
	assert.Len(t, gen.Calls(), 1)
}

func TestAnswerHRQuestion_GeneratorError(t *testing.T) {
	e := indexedEngine(t, &stubGenerator{err: errors.New("timeout")})
	res := e.AnswerHRQuestion(context.Background(), domain.HRQuestionRequest{Question: "Why?"})
	assert.Equal(t, domain.HRAnswerResult{NeedsManual: true, Error: "timeout"}, res)
}

func TestGetMultiEntries(t *testing.T) {
	gen := &stubGenerator{response: "Here you go:\n[\n  {\"institution\": \"MIT\", \"degree\": \"BSc\"}\n]\nDone."}
	e := indexedEngine(t, gen)

	entries, err := e.GetMultiEntries(context.Background(), "Education")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "MIT", entries[0]["institution"])

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 1000, calls[0].maxTokens)
	assert.Contains(t, calls[0].prompt, "MIT - BSc Computer Science, 2015")
}

func TestGetMultiEntries_InvalidSection(t *testing.T) {
	e := indexedEngine(t, &stubGenerator{})
	_, err := e.GetMultiEntries(context.Background(), "skills")
	assert.ErrorIs(t, err, ErrInvalidSection)
}

func TestGetMultiEntries_AbsentSection(t *testing.T) {
	gen := &stubGenerator{response: "[]"}
	e := indexedEngine(t, gen)

	entries, err := e.GetMultiEntries(context.Background(), "projects")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.Empty(t, gen.Calls())
}

func TestGetMultiEntries_DegradesToEmpty(t *testing.T) {
	for name, gen := range map[string]*stubGenerator{
		"no array":        {response: "I could not find entries."},
		"invalid json":    {response: "[{institution: MIT}]"},
		"generator error": {err: errors.New("boom")},
	} {
		t.Run(name, func(t *testing.T) {
			e := indexedEngine(t, gen)
			entries, err := e.GetMultiEntries(context.Background(), "experience")
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestParseEntries(t *testing.T) {
	entries, err := parseEntries(`[{"a": 1}] and later [{"b": 2}]`)
	// The greedy match spans both arrays, which is not valid JSON.
	assert.ErrorIs(t, err, ErrMalformedModelOutput)
	assert.Nil(t, entries)

	entries, err = parseEntries("```json\n[{\"company\": \"Acme\"}, {\"company\": \"Initech\"}]\n```")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = parseEntries("[]")
	require.NoError(t, err)
	assert.NotNil(t, entries)

	_, err = parseEntries("nothing here")
	assert.ErrorIs(t, err, ErrMalformedModelOutput)
}

func TestEngine_ConcurrentIndexAndQuery(t *testing.T) {
	e := newTestEngine(t, &stubGenerator{response: "ok"})
	docs := []*domain.ParsedDocument{
		{Sections: []domain.Section{{Name: "skills", Text: "alpha go"}, {Name: "summary", Text: "alpha engineer"}}},
		{Sections: []domain.Section{{Name: "skills", Text: "beta rust"}, {Name: "summary", Text: "beta engineer"}}},
	}
	require.NoError(t, e.IndexResume(docs[0]))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.NoError(t, e.IndexResume(docs[(i+j)%2]))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				chunks := e.RetrieveContext("engineer", 5)
				if !assert.Len(t, chunks, 2) {
					return
				}
				marker := strings.Fields(chunks[0].Content)[0]
				for _, ch := range chunks {
					assert.True(t, strings.HasPrefix(ch.Content, marker), "mixed state: %v", chunks)
				}
				e.GetAutofillValue(context.Background(), domain.AutofillRequest{FieldLabel: "Skills"})
				_ = e.StructuredData()
			}
		}()
	}
	wg.Wait()
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
