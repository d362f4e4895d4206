// Package htmltext flattens HTML pages into heading and paragraph lines.
package htmltext

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	root, err := html.Parse(reader)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "parse html", err)
	}

	lines := make([]string, 0)
	walk(root, &lines)
	return strings.Join(lines, "\n"), nil
}

func walk(n *html.Node, lines *[]string) {
	switch n.Type {
	case html.TextNode:
		if text := collapse(n.Data); text != "" {
			*lines = append(*lines, text)
		}
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			if text := textOf(n); text != "" {
				if !strings.HasSuffix(text, ":") {
					text += ":"
				}
				*lines = append(*lines, text)
			}
			return
		case atom.P, atom.Li, atom.Dt, atom.Dd, atom.Td, atom.Th, atom.Pre, atom.Blockquote, atom.Figcaption:
			if text := textOf(n); text != "" {
				*lines = append(*lines, text)
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, lines)
	}
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.DataAtom == atom.Script || node.DataAtom == atom.Style) {
			return
		}
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
