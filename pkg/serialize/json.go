// Package serialize turns records and tag metadata into JSON for embedding
// inside the rendered page.
package serialize

import (
	"bytes"
	"encoding/json"

	"github.com/henryaj/heycochrane/pkg/core"
)

// Records encodes the records as a JSON array in their original order.
// Absent optional fields are encoded as null and tags are always an array.
func Records(records []core.Record) ([]byte, error) {
	out := make([]core.Record, len(records))
	for i, r := range records {
		if r.Tags == nil {
			r.Tags = []string{}
		}
		out[i] = r
	}
	return encode(out)
}

// Tags encodes the tag metadata as a JSON object with sorted keys.
func Tags(meta core.TagMetadata) ([]byte, error) {
	if meta == nil {
		meta = core.TagMetadata{}
	}
	return encode(meta)
}

// encode uses an Encoder so the output keeps HTML escaping of <, > and &,
// which keeps it inert inside a <script> element.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
