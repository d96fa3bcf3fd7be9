// Package core holds the domain types shared by every stage of the site pipeline.
package core

// Record is one question/answer entry of the data file.
// It is created by the unmarshaler and never mutated afterwards.
type Record struct {
	Question string   `json:"question" yaml:"question"`
	Answer   string   `json:"answer" yaml:"answer"`
	URL      string   `json:"url" yaml:"url"`
	Notes    *string  `json:"notes" yaml:"notes,omitempty"`
	Interest *float64 `json:"interest" yaml:"interest,omitempty"`
	Tags     []string `json:"tags" yaml:"tags"`
	Date     *string  `json:"date" yaml:"date,omitempty"`
}

// HasTag reports whether the record carries the given tag label.
func (r Record) HasTag(label string) bool {
	for _, t := range r.Tags {
		if t == label {
			return true
		}
	}
	return false
}

// TagInfo describes how a tag label is presented.
type TagInfo struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// TagMetadata maps a tag label to its descriptive attributes.
type TagMetadata map[string]TagInfo

// Candidate is a review discovered upstream that may not be in the data file
// yet. CDNumber is the upper-cased Cochrane review number (CD012345).
type Candidate struct {
	CDNumber string
	URL      string
	Title    string
}
