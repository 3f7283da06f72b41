package cli

import (
	"context"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
)

// mockIngestor implements driving.Ingestor for CLI tests.
type mockIngestor struct {
	stats driving.IngestStats
	err   error
	calls int
}

func (m *mockIngestor) Ingest(_ context.Context) (driving.IngestStats, error) {
	m.calls++
	return m.stats, m.err
}

// mockRetriever implements driving.Retriever for CLI tests.
type mockRetriever struct {
	results  []domain.RetrievedChunk
	err      error
	lastOpts domain.RetrievalOptions
}

func (m *mockRetriever) Retrieve(
	_ context.Context, _ string, opts domain.RetrievalOptions,
) ([]domain.RetrievedChunk, error) {
	m.lastOpts = opts
	return m.results, m.err
}

// mockAnswerer implements driving.Answerer for CLI tests.
type mockAnswerer struct {
	record domain.AnswerRecord
	err    error
}

func (m *mockAnswerer) Answer(_ context.Context, question string) (domain.AnswerRecord, error) {
	record := m.record
	record.Question = question
	return record, m.err
}

// mockValidator implements driving.Validator for CLI tests.
type mockValidator struct {
	report domain.ValidationReport
	err    error
}

func (m *mockValidator) Validate(
	_ context.Context, _ domain.ValidationSuite,
) (domain.ValidationReport, error) {
	return m.report, m.err
}

// setupTestServices installs mock services so commands skip the real
// wiring. The returned cleanup restores the previous state.
func setupTestServices() func() {
	oldIngestor := ingestor
	oldRetriever := retriever
	oldAnswerer := answerer
	oldValidator := validator
	oldAppSettings := appSettings

	answer := "The policy allows 15 days."
	ingestor = &mockIngestor{stats: driving.IngestStats{Documents: 2, Chunks: 8}}
	retriever = &mockRetriever{results: []domain.RetrievedChunk{
		{
			Chunk: domain.Chunk{
				ID:         "deadbeef00000000:0000",
				DocumentID: "deadbeef00000000",
				Content:    "Todos los empleados tienen derecho a 15 días de vacaciones.",
			},
			Document: domain.Document{
				ID:    "deadbeef00000000",
				Title: "politicas_empresa",
			},
			Similarity: 0.91,
		},
	}}
	answerer = &mockAnswerer{record: domain.AnswerRecord{
		ID:             "test-record",
		Answer:         &answer,
		SourceChunkIDs: []string{"deadbeef00000000:0000"},
		SourceCount:    1,
	}}
	validator = &mockValidator{report: domain.ValidationReport{
		Outcomes: []domain.ValidationOutcome{
			{Question: "How many vacation days?", Passed: true},
		},
		Healthy:  true,
		PassRate: 1.0,
	}}
	appSettings = domain.DefaultAppSettings()

	return func() {
		ingestor = oldIngestor
		retriever = oldRetriever
		answerer = oldAnswerer
		validator = oldValidator
		appSettings = oldAppSettings
	}
}
