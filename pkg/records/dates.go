package records

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/henryaj/heycochrane/pkg/core"
)

const dateKey = "date"

// SetDates writes a date field into the entries of a data file, keyed by
// zero-based entry index. It edits the YAML node tree so comments, key order
// and unrelated fields survive the rewrite. Existing dates are overwritten.
func SetDates(data []byte, dates map[int]string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &core.ParseError{Err: err}
	}
	if len(dates) == 0 {
		return data, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, &core.ParseError{Err: fmt.Errorf("data file is not a sequence of entries")}
	}

	seq := doc.Content[0]
	for index, date := range dates {
		if index < 0 || index >= len(seq.Content) {
			return nil, fmt.Errorf("entry %d out of range (%d entries)", index, len(seq.Content))
		}
		item := seq.Content[index]
		if item.Kind != yaml.MappingNode {
			return nil, &core.ParseError{Err: fmt.Errorf("entry %d is not a mapping", index)}
		}
		setScalar(item, dateKey, date)
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

// setScalar sets key to a string value on a mapping node, appending the key
// when it is not present yet.
func setScalar(mapping *yaml.Node, key, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			v := mapping.Content[i+1]
			v.Kind = yaml.ScalarNode
			v.Tag = "!!str"
			v.Value = value
			v.Style = 0
			v.Content = nil
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
}
