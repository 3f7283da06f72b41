package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDocumentID_Deterministic(t *testing.T) {
	a := NewDocumentID("/corpus/manual_politicas.txt")
	b := NewDocumentID("/corpus/manual_politicas.txt")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestNewDocumentID_DistinctPaths(t *testing.T) {
	a := NewDocumentID("/corpus/a.txt")
	b := NewDocumentID("/corpus/b.txt")
	assert.NotEqual(t, a, b)
}

func TestNewChunkID_Format(t *testing.T) {
	id := NewChunkID("abcd1234", 7)
	assert.Equal(t, "abcd1234:0007", id)
}

func TestNewChunkID_OrdersLexically(t *testing.T) {
	// Zero-padded positions keep lexical order aligned with position
	// order, which the retriever's tie-break relies on.
	assert.Less(t, NewChunkID("d", 2), NewChunkID("d", 10))
}

func TestRetrievalOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    RetrievalOptions
		wantErr bool
	}{
		{"valid", RetrievalOptions{K: 5, FetchK: 20, Lambda: 0.5}, false},
		{"lambda zero", RetrievalOptions{K: 1, FetchK: 1, Lambda: 0}, false},
		{"lambda one", RetrievalOptions{K: 1, FetchK: 1, Lambda: 1}, false},
		{"zero k", RetrievalOptions{K: 0, FetchK: 10, Lambda: 0.5}, true},
		{"fetchK below k", RetrievalOptions{K: 5, FetchK: 3, Lambda: 0.5}, true},
		{"negative lambda", RetrievalOptions{K: 1, FetchK: 2, Lambda: -0.1}, true},
		{"lambda above one", RetrievalOptions{K: 1, FetchK: 2, Lambda: 1.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnswerRecord_Answered(t *testing.T) {
	answer := "15 días"
	assert.True(t, AnswerRecord{Answer: &answer}.Answered())
	assert.False(t, AnswerRecord{Error: "generation failed"}.Answered())
}
