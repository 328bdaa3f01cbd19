// Package convert turns article body HTML into normalized text markup.
package convert

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Style fragments that mark a block as a section heading in the source markup.
const (
	headingWeightMarker = "font-weight: 700"
	headingSizeMarker   = "font-size: 18px"
)

// hardBreak is the Markdown two-space line break marker.
const hardBreak = "  "

// defaultAltText is used when an image carries no alt attribute.
const defaultAltText = "이미지"

// Markdown converts article body fragments to text markup. Conversion is
// best effort: a body that cannot be converted yields an empty string so a
// single broken article never aborts the enclosing crawl.
type Markdown struct {
	logger *zap.Logger
}

// New constructs a Markdown converter.
func New(logger *zap.Logger) *Markdown {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Markdown{logger: logger}
}

// Convert renders the HTML fragment as text markup. Block elements become
// lines terminated with a hard-break marker, emphasized blocks become
// headings, and images become ![alt](url) references. Any failure is logged
// and produces "".
func (m *Markdown) Convert(bodyHTML string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("content conversion panicked", zap.Any("cause", r))
			out = ""
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML))
	if err != nil {
		m.logger.Error("content conversion failed", zap.Error(err))
		return ""
	}

	var sb strings.Builder
	for _, node := range doc.Selection.Nodes {
		renderNode(&sb, node)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		// Preserve semantic breaks from the source markup as hard breaks.
		sb.WriteString(strings.ReplaceAll(n.Data, "\n", hardBreak))
	case html.ElementNode:
		renderElement(sb, n)
	default:
		renderChildren(sb, n)
	}
}

func renderElement(sb *strings.Builder, n *html.Node) {
	switch n.Data {
	case "img":
		renderImage(sb, n)
	case "br":
		sb.WriteString(hardBreak)
	case "script", "style":
		// Non-content subtrees produce nothing.
	case "div", "p", "section", "article":
		var inner strings.Builder
		renderChildren(&inner, n)
		if isHeading(n) {
			sb.WriteString("## ")
		}
		sb.WriteString(inner.String())
		sb.WriteString(hardBreak)
	default:
		renderChildren(sb, n)
	}
}

func renderChildren(sb *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(sb, c)
	}
}

func renderImage(sb *strings.Builder, n *html.Node) {
	src := attr(n, "data-src")
	if src == "" {
		src = attr(n, "src")
	}
	if src == "" {
		return
	}
	alt := attr(n, "alt")
	if alt == "" {
		alt = defaultAltText
	}
	sb.WriteString("![")
	sb.WriteString(alt)
	sb.WriteString("](")
	sb.WriteString(src)
	sb.WriteString(")")
	sb.WriteString(hardBreak)
}

func isHeading(n *html.Node) bool {
	style := attr(n, "style")
	return strings.Contains(style, headingWeightMarker) || strings.Contains(style, headingSizeMarker)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
