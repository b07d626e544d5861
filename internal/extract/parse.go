package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/citymetrics/cityrank/internal/model"
)

// HTML element names the table parser cares about.
const (
	elementTHead = "thead"
	elementTBody = "tbody"
	elementTR    = "tr"
	elementTH    = "th"
	elementTD    = "td"
)

// headerCell is one raw header cell: visible text plus accessibility
// label, kept separate so the fallback order is decided at
// normalization time.
type headerCell struct {
	text      string
	ariaLabel string
}

// tableContent is the parsed form of one page's table snapshot.
type tableContent struct {
	headers []headerCell
	rows    []model.RawTableRow
}

// parseTableSnapshot parses the rendered outer HTML of a rankings table
// into header cells and raw rows. Rows without any cells (spacer or
// grouping rows) are dropped, matching what extraction of cell text
// would produce anyway.
func parseTableSnapshot(snapshot string) (*tableContent, error) {
	doc, err := html.Parse(strings.NewReader(snapshot))
	if err != nil {
		return nil, fmt.Errorf("failed to parse table snapshot: %w", err)
	}

	content := &tableContent{}

	var inHead, inBody bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case elementTHead:
				inHead = true
				defer func() { inHead = false }()
			case elementTBody:
				inBody = true
				defer func() { inBody = false }()
			case elementTH:
				if inHead {
					content.headers = append(content.headers, headerCell{
						text:      nodeText(n),
						ariaLabel: attrValue(n, "aria-label"),
					})
					return
				}
			case elementTR:
				if inBody {
					if row := parseRow(n); len(row) > 0 {
						content.rows = append(content.rows, row)
					}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return content, nil
}

// parseRow collects the cell text of every td in a body row.
func parseRow(tr *html.Node) model.RawTableRow {
	var row model.RawTableRow
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == elementTD {
			row = append(row, nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tr)
	return row
}

// normalizeHeaders converts parsed header cells into a HeaderSet using
// the text / aria-label / placeholder fallback order.
func normalizeHeaders(cells []headerCell) model.HeaderSet {
	headers := make(model.HeaderSet, 0, len(cells))
	for _, c := range cells {
		headers = append(headers, HeaderOrFallback(c.text, c.ariaLabel))
	}
	return headers
}

// controlDisabled reports whether a control's outer HTML carries a
// "disabled" class token. The source site's pagination control is an
// anchor that stays in the document on the last page but gains the
// disabled class.
func controlDisabled(outerHTML string) (bool, error) {
	doc, err := html.Parse(strings.NewReader(outerHTML))
	if err != nil {
		return false, fmt.Errorf("failed to parse pagination control: %w", err)
	}

	node := firstContentElement(doc)
	if node == nil {
		return false, nil
	}
	for _, class := range strings.Fields(attrValue(node, "class")) {
		if strings.EqualFold(class, "disabled") {
			return true, nil
		}
	}
	return false, nil
}

// firstContentElement returns the first element below the implicit
// html/head/body wrapper html.Parse adds around fragments.
func firstContentElement(doc *html.Node) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html", "head", "body":
				// wrapper nodes, descend
			default:
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// nodeText returns the whitespace-normalized text content of a node and
// its descendants.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
