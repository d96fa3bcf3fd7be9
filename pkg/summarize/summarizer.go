// Package summarize turns the plain language summary of a review into a
// question/answer record with a text generation model.
package summarize

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/henryaj/heycochrane/pkg/core"
)

// DefaultInterest is used when the model leaves the score out.
const DefaultInterest = 5

var (
	//go:embed prompts/summarize.txt
	defaultSummarizePrompt string

	//go:embed prompts/enrich.txt
	defaultEnrichPrompt string

	jsonObject = regexp.MustCompile(`(?s)\{[^{}]*\}`)
)

// ErrSkip is returned for reviews that have no findings to summarize.
var ErrSkip = errors.New("review skipped")

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Summarizer drafts records in two steps: question, answer and notes from
// the summary, then an interest score and tags for the draft.
type Summarizer struct {
	gen             TextGenerator
	summarizePrompt string
	enrichPrompt    string
	logger          *slog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithPrompts replaces the prompt templates. Empty values keep the defaults.
// The summarize prompt receives {plain_language_summary}; the enrich prompt
// receives {question}, {answer} and {notes}.
func WithPrompts(summarize, enrich string) Option {
	return func(s *Summarizer) {
		if summarize != "" {
			s.summarizePrompt = summarize
		}
		if enrich != "" {
			s.enrichPrompt = enrich
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) {
		s.logger = logger
	}
}

// New creates a Summarizer backed by gen.
func New(gen TextGenerator, opts ...Option) *Summarizer {
	s := &Summarizer{
		gen:             gen,
		summarizePrompt: defaultSummarizePrompt,
		enrichPrompt:    defaultEnrichPrompt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type draft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Notes    string `json:"notes"`
	Skip     bool   `json:"skip"`
	Reason   string `json:"reason"`
}

type enrichment struct {
	Interest *float64 `json:"interest"`
	Tags     []string `json:"tags"`
}

// Summarize drafts the record for the review at url. Reviews the model
// declines to summarize return an error wrapping ErrSkip.
func (s *Summarizer) Summarize(ctx context.Context, url, summary string) (core.Record, error) {
	prompt := strings.ReplaceAll(s.summarizePrompt, "{plain_language_summary}", summary)

	var d draft
	if err := s.generate(ctx, prompt, &d); err != nil {
		return core.Record{}, fmt.Errorf("summarize: %w", err)
	}
	if d.Skip {
		return core.Record{}, fmt.Errorf("%w: %s", ErrSkip, d.Reason)
	}
	if d.Question == "" || d.Answer == "" {
		return core.Record{}, errors.New("summarize: reply lacks question or answer")
	}

	prompt = strings.NewReplacer(
		"{question}", d.Question,
		"{answer}", d.Answer,
		"{notes}", d.Notes,
	).Replace(s.enrichPrompt)

	var e enrichment
	if err := s.generate(ctx, prompt, &e); err != nil {
		return core.Record{}, fmt.Errorf("enrich: %w", err)
	}
	interest := float64(DefaultInterest)
	if e.Interest != nil {
		interest = *e.Interest
	}

	rec := core.Record{
		Question: strings.TrimSpace(d.Question),
		Answer:   strings.TrimSpace(d.Answer),
		URL:      url,
		Interest: &interest,
		Tags:     cleanTags(e.Tags),
	}
	if notes := strings.TrimSpace(d.Notes); notes != "" {
		rec.Notes = &notes
	}
	return rec, nil
}

// generate runs prompt and decodes the first flat JSON object of the reply
// into v. Models tend to wrap JSON in prose or code fences.
func (s *Summarizer) generate(ctx context.Context, prompt string, v any) error {
	reply, err := s.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return err
	}
	obj := jsonObject.FindString(reply)
	if obj == "" {
		return fmt.Errorf("no JSON object in reply %q", truncate(reply, 80))
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("failed to decode reply: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("model reply", "json", obj)
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
