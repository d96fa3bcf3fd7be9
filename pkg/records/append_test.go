package records

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henryaj/heycochrane/pkg/core"
)

func ptr[T any](v T) *T { return &v }

func newRecord() core.Record {
	return core.Record{
		Question: "Does zinc help: colds?",
		Answer:   "Maybe. It may shorten colds by a day.",
		URL:      "https://www.cochrane.org/CD001364",
		Notes:    ptr("Side effects: bad taste.\nNausea in some trials."),
		Interest: ptr(7.0),
		Tags:     []string{"infections", "nutrition"},
	}
}

func TestAppend(t *testing.T) {
	out, err := Append([]byte(datedSource), []core.Record{newRecord()}, "New reviews added by automation")
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# Reviews curated by hand")
	assert.Equal(t, 2, strings.Count(text, "# New reviews added by automation"))
	assert.Contains(t, text, "notes: |")
	assert.Contains(t, text, "tags: [infections, nutrition]")

	recs, err := Unmarshal(out)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Q1", recs[0].Question)
	assert.Equal(t, "1999-01-01", *recs[1].Date)

	added := recs[2]
	assert.Equal(t, "Does zinc help: colds?", added.Question)
	assert.Equal(t, "https://www.cochrane.org/CD001364", added.URL)
	require.NotNil(t, added.Notes)
	assert.Equal(t, "Side effects: bad taste.\nNausea in some trials.", strings.TrimRight(*added.Notes, "\n"))
	require.NotNil(t, added.Interest)
	assert.Equal(t, 7.0, *added.Interest)
	assert.Equal(t, []string{"infections", "nutrition"}, added.Tags)
	assert.Nil(t, added.Date)
}

func TestAppend_EmptyFile(t *testing.T) {
	r := newRecord()
	r.Notes = nil
	r.Interest = ptr(6.5)

	out, err := Append(nil, []core.Record{r}, "")
	require.NoError(t, err)

	recs, err := Unmarshal(out)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Notes)
	assert.Equal(t, 6.5, *recs[0].Interest)
}

func TestAppend_FlowSequence(t *testing.T) {
	out, err := Append([]byte("[{question: q, answer: a, url: u}]\n"), []core.Record{newRecord()}, "")
	require.NoError(t, err)

	recs, err := Unmarshal(out)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestAppend_NothingToAdd(t *testing.T) {
	out, err := Append([]byte(datedSource), nil, "ignored")
	require.NoError(t, err)
	assert.Equal(t, datedSource, string(out))
}

func TestAppend_NotASequence(t *testing.T) {
	_, err := Append([]byte("question: q\n"), []core.Record{newRecord()}, "")
	assert.Error(t, err)
}
