package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnowledgeQuery_Normalise(t *testing.T) {
	tests := []struct {
		name        string
		query       KnowledgeQuery
		defaultTopK int
		expected    KnowledgeQuery
	}{
		{
			name:        "applies default top k",
			query:       KnowledgeQuery{Query: " política de contrato social "},
			defaultTopK: 5,
			expected:    KnowledgeQuery{Query: "política de contrato social", TopK: 5},
		},
		{
			name:        "keeps explicit top k",
			query:       KnowledgeQuery{Query: "q", TopK: 2},
			defaultTopK: 5,
			expected:    KnowledgeQuery{Query: "q", TopK: 2},
		},
		{
			name:        "invalid default falls back to package default",
			query:       KnowledgeQuery{Query: "q"},
			defaultTopK: 0,
			expected:    KnowledgeQuery{Query: "q", TopK: DefaultTopK},
		},
		{
			name:        "negative top k is preserved for validation",
			query:       KnowledgeQuery{Query: "q", TopK: -1},
			defaultTopK: 3,
			expected:    KnowledgeQuery{Query: "q", TopK: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.query.Normalise(tt.defaultTopK))
		})
	}
}

func TestKnowledgeDefaults(t *testing.T) {
	assert.Equal(t, 3, DefaultTopK)
	assert.InDelta(t, 0.5, DefaultMatchThreshold, 1e-9)
}

func TestValidMatchThreshold(t *testing.T) {
	tests := []struct {
		in   float64
		want bool
	}{
		{0, true},
		{0.5, true},
		{1, true},
		{-0.1, false},
		{1.5, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidMatchThreshold(tt.in), "threshold %v", tt.in)
	}
}
