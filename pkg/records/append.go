package records

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/henryaj/heycochrane/pkg/core"
)

// Append adds recs to the end of a data file. Like SetDates it edits the
// node tree, so existing entries keep their comments and formatting. A
// non-empty comment is attached above the first new entry.
func Append(data []byte, recs []core.Record, comment string) ([]byte, error) {
	if len(recs) == 0 {
		return data, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &core.ParseError{Err: err}
	}

	var seq *yaml.Node
	switch {
	case doc.Kind == 0 || len(doc.Content) == 0 || doc.Content[0].Tag == "!!null":
		seq = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{seq}, HeadComment: doc.HeadComment}
	case doc.Content[0].Kind == yaml.SequenceNode:
		seq = doc.Content[0]
		seq.Style &^= yaml.FlowStyle
	default:
		return nil, &core.ParseError{Err: fmt.Errorf("data file is not a sequence of entries")}
	}

	for i, r := range recs {
		item := entryNode(r)
		if i == 0 && comment != "" {
			item.HeadComment = commentText(comment)
		}
		seq.Content = append(seq.Content, item)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func commentText(comment string) string {
	lines := strings.Split(strings.TrimSpace(comment), "\n")
	for i, l := range lines {
		if !strings.HasPrefix(l, "#") {
			lines[i] = "# " + l
		}
	}
	return strings.Join(lines, "\n")
}

// entryNode lays out one record the way the data file is written by hand:
// quoted question and answer, notes as a literal block, tags inline.
func entryNode(r core.Record) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, strNode(key), value)
	}

	q := strNode(r.Question)
	q.Style = yaml.DoubleQuotedStyle
	add("question", q)
	a := strNode(r.Answer)
	a.Style = yaml.DoubleQuotedStyle
	add("answer", a)
	add("url", strNode(r.URL))

	if r.Notes != nil && *r.Notes != "" {
		n := strNode(*r.Notes)
		n.Style = yaml.LiteralStyle
		add("notes", n)
	}
	if r.Interest != nil {
		add("interest", numberNode(*r.Interest))
	}

	tags := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, t := range r.Tags {
		tags.Content = append(tags.Content, strNode(t))
	}
	add("tags", tags)

	if r.Date != nil && *r.Date != "" {
		add(dateKey, strNode(*r.Date))
	}
	return m
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func numberNode(f float64) *yaml.Node {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(f), 10)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'f', -1, 64)}
}
