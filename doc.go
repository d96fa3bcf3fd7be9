// Package heycochrane renders question/answer summaries of Cochrane reviews
// into a single static HTML page.
//
// A data file holds an ordered YAML list of records. Each record pairs a
// plain-language question with the answer a Cochrane review gives, a link to
// the review and optional notes, interest score, tags and publication date.
// A template receives the records and the tag metadata both as values to
// iterate over and as JSON literals ready to embed in a script block.
//
// Rendering either writes the complete page or leaves the previous output
// untouched.
//
// Usage:
//
//	err := heycochrane.Render("template.html", "summaries.yml", "index.html",
//		heycochrane.WithLogger(logger),
//	)
//
// The heycochrane command wraps the same pipeline and adds publishing through
// git, a watch mode and a publication date backfill.
package heycochrane
