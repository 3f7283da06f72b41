package domain

import "time"

// AnswerRecord is the persisted outcome of one question, successful or not.
// Records are append-only: once written to the result log they are never
// rewritten, so every query in a batch is countable afterwards.
type AnswerRecord struct {
	// ID uniquely identifies this record in the result log.
	ID string `json:"id"`

	// Question is the user question as asked.
	Question string `json:"question"`

	// Answer is the generated answer, or nil when generation failed.
	Answer *string `json:"answer"`

	// Timestamp is the UTC creation time.
	Timestamp time.Time `json:"timestamp"`

	// SourceChunkIDs lists the distinct chunk ids supplied as context,
	// in retrieval order.
	SourceChunkIDs []string `json:"sources"`

	// SourceCount is len(SourceChunkIDs), persisted for log consumers.
	SourceCount int `json:"num_sources"`

	// Error holds the failure reason when Answer is nil.
	Error string `json:"error,omitempty"`
}

// Answered reports whether the record carries a generated answer.
func (r AnswerRecord) Answered() bool {
	return r.Answer != nil
}

// RetrievalOptions configures diversity-aware retrieval.
type RetrievalOptions struct {
	// K is the number of chunks to return.
	K int

	// FetchK is the candidate pool size fetched before MMR selection.
	FetchK int

	// Lambda balances relevance against diversity in [0,1].
	// 1 degenerates to plain top-k similarity.
	Lambda float64
}

// Validate checks the option invariants before any retrieval work happens.
func (o RetrievalOptions) Validate() error {
	if o.K <= 0 {
		return ErrInvalidConfig
	}
	if o.FetchK < o.K {
		return ErrInvalidConfig
	}
	if o.Lambda < 0 || o.Lambda > 1 {
		return ErrInvalidConfig
	}
	return nil
}
