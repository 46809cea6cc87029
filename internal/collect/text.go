package collect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p, br, div, li, tr, blockquote, pre, h1, h2, h3, h4, h5, h6"

// HTMLToText strips markup from an HTML fragment and collapses whitespace.
func HTMLToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " ")
}
