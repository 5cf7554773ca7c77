package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "markdown fences",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "prose around the object",
			input:    "Here is the result:\n{\"a\": 1}\nHope this helps!",
			expected: `{"a": 1}`,
		},
		{
			name:     "think block stripped",
			input:    "<think>let me reason about {braces}</think>{\"a\": 1}",
			expected: `{"a": 1}`,
		},
		{
			name:     "array payload",
			input:    "```\n[1, 2, 3]\n```",
			expected: `[1, 2, 3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSON(tt.input))
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "trailing comma in object", input: `{"a": 1,}`},
		{name: "trailing comma in array", input: `{"a": [1, 2,]}`},
		{name: "unclosed brace", input: `{"a": {"b": 1}`},
		{name: "unclosed bracket", input: `{"a": [1, 2`},
		{name: "unterminated string", input: `{"a": "oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired := repairJSON(tt.input)

			var out map[string]interface{}
			err := decodeStructured(repaired, &out)
			require.NoError(t, err, "repaired: %s", repaired)
			assert.Contains(t, out, "a")
		})
	}
}

func TestDecodeStructuredRepairsMalformedResponse(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}

	// Truncated output, as models produce when they hit the token limit.
	err := decodeStructured("```json\n{\"name\": \"Jane\",\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Name)
}

func TestGenerateStructuredFirstTry(t *testing.T) {
	gemini := &stubGemini{script: []geminiCall{{response: `{"name": "Jane"}`}}}

	var out struct {
		Name string `json:"name"`
	}
	err := generateStructured(context.Background(), gemini, "parse this", 0.3, &out)
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Name)
	assert.Equal(t, 1, gemini.calls)
}

func TestGenerateStructuredRetryCarriesRawResponse(t *testing.T) {
	gemini := &stubGemini{script: []geminiCall{
		{response: "I cannot answer in JSON, sorry."},
		{response: `{"name": "Jane"}`},
	}}

	var out struct {
		Name string `json:"name"`
	}
	err := generateStructured(context.Background(), gemini, "parse this", 0.3, &out)
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Name)

	require.Len(t, gemini.prompts, 2)
	assert.Contains(t, gemini.prompts[1], "previous response was not valid JSON")
	assert.Contains(t, gemini.prompts[1], "I cannot answer in JSON, sorry.")
	assert.Contains(t, gemini.prompts[1], "parse this")
}

func TestGenerateStructuredExhaustsRetries(t *testing.T) {
	gemini := &stubGemini{script: []geminiCall{{response: "{{{"}}}

	var out map[string]interface{}
	err := generateStructured(context.Background(), gemini, "parse this", 0.3, &out)
	require.Error(t, err)

	assert.Equal(t, structuredMaxAttempts, gemini.calls)
	assert.Equal(t, CodeLLMResponseInvalid, ErrorCode(err))
	assert.Equal(t, "{{{", RawResponse(err))
}

func TestGenerateStructuredTransportErrorThenSuccess(t *testing.T) {
	gemini := &stubGemini{script: []geminiCall{
		{err: errors.New("transient transport failure")},
		{response: `{"name": "Jane"}`},
	}}

	var out struct {
		Name string `json:"name"`
	}
	err := generateStructured(context.Background(), gemini, "parse this", 0.3, &out)
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Name)
	assert.Equal(t, 2, gemini.calls)
}

func TestGenerateStructuredStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gemini := &stubGemini{script: []geminiCall{{response: "not json"}}}

	var out map[string]interface{}
	err := generateStructured(ctx, gemini, "parse this", 0.3, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gemini.calls)
}
