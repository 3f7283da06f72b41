package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.Answerer = (*AnswerService)(nil)

// answerMaxTokens caps generation length; answers are meant to be terse.
const answerMaxTokens = 512

// AnswerService produces grounded answers over retrieved context.
type AnswerService struct {
	retriever driving.Retriever
	llm       driven.LLMService
	sink      driven.ResultSink
	policy    *callPolicy
	opts      domain.RetrievalOptions
}

// NewAnswerService wires retrieval, generation, and the result log.
func NewAnswerService(
	retriever driving.Retriever,
	llm driven.LLMService,
	sink driven.ResultSink,
	settings *domain.AppSettings,
) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		llm:       llm,
		sink:      sink,
		policy:    newCallPolicy(settings.Retry),
		opts: domain.RetrievalOptions{
			K:      settings.Retrieval.K,
			FetchK: settings.Retrieval.FetchK,
			Lambda: settings.Retrieval.Lambda,
		},
	}
}

// Answer retrieves context for the question, invokes generation once,
// and appends the record to the result log. Structural failures (no
// index, bad options) are returned as errors; a generation failure
// after retries still yields a record, with a nil answer and a reason,
// so a batch of questions always produces one record per question.
func (s *AnswerService) Answer(ctx context.Context, question string) (domain.AnswerRecord, error) {
	retrieved, err := s.retriever.Retrieve(ctx, question, s.opts)
	if err != nil {
		return domain.AnswerRecord{}, err
	}

	record := domain.AnswerRecord{
		ID:        uuid.New().String(),
		Question:  question,
		Timestamp: time.Now().UTC(),
	}
	for _, rc := range retrieved {
		record.SourceChunkIDs = append(record.SourceChunkIDs, rc.Chunk.ID)
	}
	record.SourceCount = len(record.SourceChunkIDs)

	prompt := buildPrompt(question, retrieved)

	var answer string
	err = s.policy.do(ctx, "generation", func(ctx context.Context) error {
		var genErr error
		answer, genErr = s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   answerMaxTokens,
			Temperature: 0,
		})
		return genErr
	})
	if err != nil {
		record.Error = fmt.Sprintf("%v: %v", domain.ErrGenerationUnavailable, err)
		logger.Warn("Generation failed for %q: %v", question, err)
	} else {
		trimmed := strings.TrimSpace(answer)
		record.Answer = &trimmed
	}

	if err := s.sink.Append(ctx, record); err != nil {
		return record, fmt.Errorf("recording answer: %w", err)
	}

	return record, nil
}

// buildPrompt assembles the grounded generation prompt: each retrieved
// chunk tagged with its source id, then the question, a grounding
// instruction, and a terseness directive.
func buildPrompt(question string, retrieved []domain.RetrievedChunk) string {
	var sb strings.Builder

	sb.WriteString("Answer the question using ONLY the context below.\n\n")
	sb.WriteString("Context:\n")
	for _, rc := range retrieved {
		fmt.Fprintf(&sb, "[source: %s]\n%s\n\n", rc.Chunk.ID, rc.Chunk.Content)
	}
	fmt.Fprintf(&sb, "Question: %s\n\n", question)
	sb.WriteString("If the context does not contain the information needed, ")
	sb.WriteString("say that no information is available in the documents. ")
	sb.WriteString("Do not invent facts. Answer in the language of the question, ")
	sb.WriteString("and be brief: a few sentences at most.")

	return sb.String()
}
