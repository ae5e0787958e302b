package parser

import (
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// allowedTags are the inline formatting tags kept from backend descriptions.
// Attributes are always dropped.
var allowedTags = map[string]bool{
	"br":     true,
	"i":      true,
	"b":      true,
	"em":     true,
	"strong": true,
	"p":      true,
}

// droppedTags are removed together with their content.
var droppedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"noscript": true,
	"template": true,
}

// SanitizeDescription parses the HTML description returned by the backend and keeps only
// basic formatting tags, so it can be rendered without escaping.
func SanitizeDescription(raw string) (template.HTML, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse description: %w", err)
	}

	var b strings.Builder
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			writeSanitized(&b, n)
		}
	})

	return template.HTML(strings.TrimSpace(b.String())), nil
}

func writeSanitized(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if droppedTags[tag] {
			return
		}
		if tag == "br" {
			b.WriteString("<br>")
			return
		}
		keep := allowedTags[tag]
		if keep {
			b.WriteString("<" + tag + ">")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeSanitized(b, c)
		}
		if keep {
			b.WriteString("</" + tag + ">")
		}
	}
}

// Excerpt returns the plain text of an HTML description, whitespace-collapsed and cut to at
// most maxRunes runes (an ellipsis is appended when truncated). maxRunes <= 0 disables the cut.
func Excerpt(raw string, maxRunes int) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	var b strings.Builder
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			collectText(&b, n)
		}
	})

	text := strings.Join(strings.Fields(b.String()), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	cut := strings.TrimSpace(string(runes[:maxRunes]))
	return cut + "…"
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if droppedTags[tag] {
			return
		}
		if tag == "br" || tag == "p" {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectText(b, c)
		}
	}
}
