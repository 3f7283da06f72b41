package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/vector/bruteforce"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

func newAnswerFixture(t *testing.T, texts map[string]string, llm *fakeLLM) (*AnswerService, *memSink) {
	t.Helper()

	store := newMemStore()
	index := bruteforce.New()
	seedIndex(t, store, index, texts)

	settings := fastSettings()
	settings.Retrieval.K = 2
	settings.Retrieval.FetchK = 5

	retriever := NewRetrievalService(&fakeEmbedder{}, index, store, settings)
	sink := &memSink{}
	svc := NewAnswerService(retriever, llm, sink, settings)
	svc.policy.baseDelay = time.Millisecond
	return svc, sink
}

func TestAnswerService_Answer(t *testing.T) {
	texts := map[string]string{
		"doc:0000": "Empleados nuevos: 15 días al año",
		"doc:0001": "Horario flexible entre 7:00 AM y 7:00 PM",
	}
	llm := &fakeLLM{fallback: "Los empleados nuevos tienen 15 días al año."}
	svc, sink := newAnswerFixture(t, texts, llm)

	record, err := svc.Answer(context.Background(), "¿Cuántos días de vacaciones tienen los empleados nuevos?")
	require.NoError(t, err)

	require.True(t, record.Answered())
	assert.Contains(t, *record.Answer, "15 días")
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.Timestamp.IsZero())
	assert.Equal(t, len(record.SourceChunkIDs), record.SourceCount)
	assert.NotEmpty(t, record.SourceChunkIDs)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
}

func TestAnswerService_PromptContainsTaggedContext(t *testing.T) {
	texts := map[string]string{
		"doc:0000": "Mínimo 80% de cobertura de código",
	}
	llm := &fakeLLM{fallback: "El mínimo es 80%."}
	svc, _ := newAnswerFixture(t, texts, llm)

	question := "¿Cuál es la cobertura mínima de tests?"
	_, err := svc.Answer(context.Background(), question)
	require.NoError(t, err)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "[source: doc:0000]")
	assert.Contains(t, prompt, "Mínimo 80% de cobertura")
	assert.Contains(t, prompt, question)
	assert.Contains(t, prompt, "no information is available")
}

func TestAnswerService_GenerationFailureYieldsRecord(t *testing.T) {
	texts := map[string]string{"doc:0000": "some context"}
	llm := &fakeLLM{failCalls: map[int]error{
		1: fmt.Errorf("%w: overloaded", domain.ErrTransient),
		2: fmt.Errorf("%w: overloaded", domain.ErrTransient),
		3: fmt.Errorf("%w: overloaded", domain.ErrTransient),
	}}
	svc, sink := newAnswerFixture(t, texts, llm)

	record, err := svc.Answer(context.Background(), "question")
	require.NoError(t, err, "generation failure is recorded, not returned")

	assert.False(t, record.Answered())
	assert.Nil(t, record.Answer)
	assert.Contains(t, record.Error, "generation service unavailable")

	records := sink.all()
	require.Len(t, records, 1, "failed answers still reach the result log")
	assert.Nil(t, records[0].Answer)
}

func TestAnswerService_RetriesTransientGeneration(t *testing.T) {
	texts := map[string]string{"doc:0000": "some context"}
	llm := &fakeLLM{
		fallback: "answer after retry",
		failCalls: map[int]error{
			1: fmt.Errorf("%w: blip", domain.ErrTransient),
		},
	}
	svc, _ := newAnswerFixture(t, texts, llm)

	record, err := svc.Answer(context.Background(), "question")
	require.NoError(t, err)

	require.True(t, record.Answered())
	assert.Equal(t, "answer after retry", *record.Answer)
	assert.Equal(t, 2, llm.calls)
}

func TestAnswerService_EmptyIndexIsStructural(t *testing.T) {
	settings := fastSettings()
	retriever := NewRetrievalService(&fakeEmbedder{}, bruteforce.New(), newMemStore(), settings)
	svc := NewAnswerService(retriever, &fakeLLM{}, &memSink{}, settings)

	_, err := svc.Answer(context.Background(), "question")
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}
