package retrieval

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML reduces an HTML fragment to its visible text, skipping script
// and style content. Search backends return excerpts with highlight markup;
// the pipeline compares plain text only.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<>") {
		return strings.TrimSpace(fragment)
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String()
}
