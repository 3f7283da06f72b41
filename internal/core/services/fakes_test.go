package services

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// --- Fake implementations shared by the service tests ---

const fakeDims = 32

// fakeEmbedder produces deterministic bag-of-words embeddings: each
// token hashes to one dimension. Texts sharing words get similar
// vectors, which is enough signal for retrieval tests.
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	failCalls map[int]error // 1-based call number -> error
}

func (f *fakeEmbedder) embed(text string) []float32 {
	vec := make([]float32, fakeDims)
	for _, token := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r < 128
	}) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%fakeDims]++
	}
	return vec
}

func (f *fakeEmbedder) nextErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failCalls != nil {
		if err, ok := f.failCalls[f.calls]; ok {
			return err
		}
	}
	return nil
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return f.embed(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.embed(text)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int                { return fakeDims }
func (f *fakeEmbedder) ModelName() string              { return "fake-embedder" }
func (f *fakeEmbedder) Ping(_ context.Context) error   { return nil }
func (f *fakeEmbedder) Close() error                   { return nil }

// fakeLLM answers via a script keyed on the question found in the
// prompt, optionally failing specific calls.
type fakeLLM struct {
	mu        sync.Mutex
	calls     int
	prompts   []string
	answers   map[string]string // substring of prompt -> answer
	fallback  string
	failCalls map[int]error // 1-based call number -> error
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.failCalls != nil {
		if err, ok := f.failCalls[f.calls]; ok {
			return "", err
		}
	}
	for key, answer := range f.answers {
		if strings.Contains(prompt, key) {
			return answer, nil
		}
	}
	return f.fallback, nil
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

// memStore is an in-memory DocumentStore.
type memStore struct {
	mu     sync.RWMutex
	docs   map[string]domain.Document
	chunks map[string]domain.Chunk
}

func newMemStore() *memStore {
	return &memStore{
		docs:   make(map[string]domain.Document),
		chunks: make(map[string]domain.Chunk),
	}
}

func (m *memStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = *doc
	return nil
}

func (m *memStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunk := range chunks {
		m.chunks[chunk.ID] = chunk
	}
	return nil
}

func (m *memStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *memStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chunk, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

func (m *memStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Chunk
	for _, chunk := range m.chunks {
		if chunk.DocumentID == documentID {
			out = append(out, chunk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memStore) AllChunks(_ context.Context) ([]domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Chunk, 0, len(m.chunks))
	for _, chunk := range m.chunks {
		out = append(out, chunk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CountChunks(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

func (m *memStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	for cid, chunk := range m.chunks {
		if chunk.DocumentID == id {
			delete(m.chunks, cid)
		}
	}
	return nil
}

// memSink records appended answer records.
type memSink struct {
	mu      sync.Mutex
	records []domain.AnswerRecord
}

func (m *memSink) Append(_ context.Context, record domain.AnswerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *memSink) Close() error { return nil }

func (m *memSink) all() []domain.AnswerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AnswerRecord, len(m.records))
	copy(out, m.records)
	return out
}

// fakeSource serves a fixed document set.
type fakeSource struct {
	docs []domain.Document
	err  error
}

func (f *fakeSource) Load(_ context.Context) ([]domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

// fastSettings returns defaults tuned for tests: no throttling, tiny
// chunks, immediate retries.
func fastSettings() *domain.AppSettings {
	settings := domain.DefaultAppSettings()
	settings.Retry.RequestsPerSecond = 0
	settings.Retry.MaxAttempts = 3
	return settings
}
