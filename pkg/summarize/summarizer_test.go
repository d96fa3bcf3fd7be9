package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// scripted replies to prompts in order and records what it was asked.
type scripted struct {
	replies []string
	err     error
	prompts []string
}

func (s *scripted) GenerateContent(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", errors.New("no reply scripted")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func TestSummarize(t *testing.T) {
	gen := &scripted{replies: []string{
		"Here you go:\n```json\n{\"question\": \"Does zinc help with colds?\", \"answer\": \"Maybe. Colds may end a day sooner.\", \"notes\": \"Bad taste and nausea were common.\"}\n```",
		`{"interest": 8, "tags": ["Infections", "nutrition", "infections", " "]}`,
	}}

	rec, err := New(gen).Summarize(context.Background(), "https://www.cochrane.org/CD001364", "Zinc lozenges ...")
	require.NoError(t, err)

	assert.Equal(t, "Does zinc help with colds?", rec.Question)
	assert.Equal(t, "Maybe. Colds may end a day sooner.", rec.Answer)
	assert.Equal(t, "https://www.cochrane.org/CD001364", rec.URL)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "Bad taste and nausea were common.", *rec.Notes)
	require.NotNil(t, rec.Interest)
	assert.Equal(t, 8.0, *rec.Interest)
	assert.Equal(t, []string{"infections", "nutrition"}, rec.Tags)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "Zinc lozenges ...")
	assert.Contains(t, gen.prompts[1], "Question: Does zinc help with colds?")
	assert.Contains(t, gen.prompts[1], "Notes: Bad taste and nausea were common.")
}

func TestSummarize_DefaultInterest(t *testing.T) {
	gen := &scripted{replies: []string{
		`{"question": "q", "answer": "a", "notes": ""}`,
		`{"tags": []}`,
	}}

	rec, err := New(gen).Summarize(context.Background(), "u", "pls")
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultInterest), *rec.Interest)
	assert.Nil(t, rec.Notes)
	assert.Empty(t, rec.Tags)
}

func TestSummarize_CustomPrompts(t *testing.T) {
	gen := &scripted{replies: []string{`{"question": "q", "answer": "a"}`, `{"interest": 1}`}}

	_, err := New(gen, WithPrompts("S: {plain_language_summary}", "E: {question}/{answer}")).Summarize(context.Background(), "u", "text")
	require.NoError(t, err)
	assert.Equal(t, []string{"S: text", "E: q/a"}, gen.prompts)
}

func TestSummarize_Failures(t *testing.T) {
	tests := []struct {
		name    string
		gen     *scripted
		wantErr string
		skip    bool
	}{
		{"skip", &scripted{replies: []string{`{"skip": true, "reason": "protocol"}`}}, "protocol", true},
		{"no json", &scripted{replies: []string{"I cannot help with that."}}, "no JSON object", false},
		{"missing answer", &scripted{replies: []string{`{"question": "q"}`}}, "lacks question or answer", false},
		{"bad enrichment", &scripted{replies: []string{`{"question": "q", "answer": "a"}`, `{"interest": "high"}`}}, "enrich", false},
		{"model error", &scripted{err: errors.New("quota exceeded")}, "quota exceeded", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.gen).Summarize(context.Background(), "u", "pls")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Equal(t, tc.skip, errors.Is(err, ErrSkip))
		})
	}
}

func TestDefaultPromptsHavePlaceholders(t *testing.T) {
	assert.True(t, strings.Contains(defaultSummarizePrompt, "{plain_language_summary}"))
	for _, p := range []string{"{question}", "{answer}", "{notes}"} {
		assert.Contains(t, defaultEnrichPrompt, p)
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "")
	assert.Error(t, err)
}

func TestResponseText(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	text, err := responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "{\"a\":"}, {Text: "1}"}}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
}
