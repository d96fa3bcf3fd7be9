package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/henryaj/heycochrane/pkg/core"
	"github.com/henryaj/heycochrane/pkg/tags"
)

// Funcs returns the helper functions available to page templates.
func Funcs(store *tags.Store) template.FuncMap {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	return template.FuncMap{
		"markdown": func(v any) (template.HTML, error) {
			return markdown(md, text(v))
		},
		"tag": func(label string) core.TagInfo {
			if store == nil {
				return core.TagInfo{Name: label}
			}
			return store.Info(label)
		},
		"join":  strings.Join,
		"lower": strings.ToLower,
		"deref": deref,
	}
}

// markdown converts notes to HTML. Raw HTML in the source is dropped.
func markdown(md goldmark.Markdown, src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case *string:
		if s == nil {
			return ""
		}
		return *s
	default:
		return fmt.Sprint(v)
	}
}

// deref unwraps the optional record fields so templates can print them.
func deref(v any) any {
	switch p := v.(type) {
	case *string:
		if p == nil {
			return ""
		}
		return *p
	case *float64:
		if p == nil {
			return ""
		}
		return *p
	default:
		return v
	}
}
