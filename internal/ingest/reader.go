package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/nofnotg/anamnesis/internal/model"
)

// ReadDocument loads one OCR-exported medical record and splits it into
// text segments with stable ids. Plain text and HTML exports are
// supported; anything else is treated as plain text.
func ReadDocument(path string) ([]model.TextSegment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err := visibleText(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		return Segment(docID, text), nil
	default:
		return Segment(docID, string(raw)), nil
	}
}

// Segment splits text on blank-line boundaries into segments with stable
// ids of the form <doc>-seg-<nnn>. Empty blocks are dropped.
func Segment(docID, text string) []model.TextSegment {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	var segments []model.TextSegment
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		segments = append(segments, model.TextSegment{
			ID:   fmt.Sprintf("%s-seg-%03d", docID, len(segments)+1),
			Text: block,
		})
	}
	return segments
}

// visibleText extracts the visible text of an HTML OCR export, skipping
// scripts and styles, with newlines at block-element boundaries so the
// segmenter sees the original layout.
func visibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "p", "div", "br", "tr", "li", "h1", "h2", "h3", "h4", "h5", "h6", "table":
				buf.WriteString("\n\n")
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String(), nil
}
