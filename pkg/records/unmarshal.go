// Package records converts the YAML data file into core.Record values.
package records

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/henryaj/heycochrane/pkg/core"
)

// entry mirrors one mapping of the data file. Pointers distinguish an absent
// (or null) field from an empty one.
type entry struct {
	Question *string  `yaml:"question"`
	Answer   *string  `yaml:"answer"`
	URL      *string  `yaml:"url"`
	Notes    *string  `yaml:"notes"`
	Interest *float64 `yaml:"interest"`
	Tags     []string `yaml:"tags"`
	Date     *string  `yaml:"date"`
}

// ErrMultipleDocuments is wrapped in a *core.ParseError when the data holds
// more than one YAML document.
var ErrMultipleDocuments = errors.New("data file must hold a single YAML document")

// Unmarshal parses a YAML sequence of entries into records, preserving
// source order. It fails on the first malformed or incomplete entry.
func Unmarshal(data []byte) ([]core.Record, error) {
	return unmarshal("", data)
}

// Load reads the data file at path and unmarshals it.
func Load(path string) ([]core.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.IOError{Op: "read", Path: path, Err: err}
	}
	return unmarshal(path, data)
}

func unmarshal(source string, data []byte) ([]core.Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var entries []*entry
	if err := dec.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, &core.ParseError{Source: source, Err: err}
	}

	var extra yaml.Node
	err := dec.Decode(&extra)
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, &core.ParseError{Source: source, Err: err}
	case len(extra.Content) > 0:
		return nil, &core.ParseError{Source: source, Err: ErrMultipleDocuments}
	}

	records := make([]core.Record, 0, len(entries))
	for i, e := range entries {
		r, err := e.toRecord(i)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (e *entry) toRecord(index int) (core.Record, error) {
	if e == nil {
		return core.Record{}, &core.MissingFieldError{Index: index, Field: "question"}
	}

	required := []struct {
		name  string
		value *string
	}{
		{"question", e.Question},
		{"answer", e.Answer},
		{"url", e.URL},
	}
	for _, f := range required {
		if f.value == nil {
			return core.Record{}, &core.MissingFieldError{Index: index, Field: f.name}
		}
	}

	return core.Record{
		Question: *e.Question,
		Answer:   *e.Answer,
		URL:      *e.URL,
		Notes:    e.Notes,
		Interest: e.Interest,
		Tags:     uniqueTags(e.Tags),
		Date:     e.Date,
	}, nil
}

// uniqueTags drops repeated labels, keeping first occurrences in order.
// The result is never nil.
func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
