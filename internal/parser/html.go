package parser

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/yuin/goldmark"
)

// extractHTML parses the document and collects visible text, dropping script
// and style subtrees. Block elements become paragraph boundaries.
func extractHTML(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	var buf strings.Builder
	collectHTMLText(doc, &buf)
	return normalizeWhitespace(buf.String()), nil
}

// extractMarkdown renders Markdown to HTML first so headings, lists and links
// collapse to their textual content.
func extractMarkdown(data []byte) (string, error) {
	var rendered bytes.Buffer
	if err := goldmark.Convert(data, &rendered); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return extractHTML(rendered.Bytes())
}

var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {}, "tr": {}, "section": {}, "article": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {}, "blockquote": {}, "pre": {},
}

func collectHTMLText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTMLText(c, buf)
	}
	if n.Type == html.ElementNode {
		if _, ok := blockElements[n.Data]; ok {
			buf.WriteString("\n\n")
		}
	}
}

// normalizeWhitespace collapses runs of spaces within lines and runs of blank
// lines into single paragraph breaks.
func normalizeWhitespace(s string) string {
	paragraphs := strings.Split(s, "\n\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "\n\n")
}
