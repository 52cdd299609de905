package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Page is the text view of a fetched HTML document
type Page struct {
	Text        string
	Title       string
	Description string
}

// blockElements start a new line in the extracted text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true, "nav": true,
	"main": true, "aside": true, "table": true, "tr": true, "td": true, "th": true,
	"blockquote": true, "pre": true, "dt": true, "dd": true, "figcaption": true,
	"form": true, "hr": true,
}

// ParsePage extracts visible text, the document title and the meta
// description from raw HTML. Malformed markup never fails; html.Parse
// recovers the same way browsers do.
func ParsePage(raw string) Page {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return Page{}
	}

	var page Page
	var metaDesc, ogDesc string
	var buf strings.Builder

	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inHead bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template", "svg":
				return
			case "title":
				if page.Title == "" {
					page.Title = collapseSpaces(textOf(n))
				}
				return
			case "meta":
				name := strings.ToLower(attr(n, "name"))
				prop := strings.ToLower(attr(n, "property"))
				content := strings.TrimSpace(attr(n, "content"))
				if name == "description" && metaDesc == "" {
					metaDesc = content
				}
				if prop == "og:description" && ogDesc == "" {
					ogDesc = content
				}
				return
			case "head":
				inHead = true
			}
			if blockElements[n.Data] {
				buf.WriteString("\n")
			}
		}

		if n.Type == html.TextNode && !inHead {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inHead)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}
	walk(doc, false)

	page.Text = normalizeLines(buf.String())
	page.Description = metaDesc
	if page.Description == "" {
		page.Description = ogDesc
	}
	return page
}

// normalizeLines collapses whitespace within lines and drops empty lines
func normalizeLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = collapseSpaces(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func textOf(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// TitleName derives a display name from a page title. Titles such as
// "Home - Efteling" keep the last " - " segment.
func TitleName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	parts := strings.Split(title, " - ")
	return strings.TrimSpace(parts[len(parts)-1])
}
