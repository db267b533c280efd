// Package markdown renders trusted-but-untyped text, such as the code of conduct, to HTML.
package markdown

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	parser     goldmark.Markdown
	parserOnce sync.Once
)

func getParser() goldmark.Markdown {
	parserOnce.Do(func() {
		// Raw HTML in the source is dropped (goldmark's default without html.WithUnsafe).
		parser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return parser
}

// ToHTML converts markdown source to an HTML fragment.
func ToHTML(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := getParser().Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// IsURL reports whether s is a link rather than markdown text.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
