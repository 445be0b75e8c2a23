package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)<(p|div|br|ul|ol|li|table|tr|td|h[1-6]|strong|em|b|i|a|pre|code|blockquote)\b[^>]*>`)

var blankLines = regexp.MustCompile(`\n{3,}`)

func looksLikeHTML(s string) bool {
	return htmlTag.MatchString(s)
}

// HTMLToText flattens an HTML fragment into readable text. Block elements end
// with a newline and list items get a bullet.
func HTMLToText(s string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		sel.PrependHtml("• ")
	})
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6, pre, blockquote").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text), nil
}
