package harvest

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/basinworks/wellpipe/internal/models"
	"github.com/basinworks/wellpipe/internal/normalize"
)

// selectOptions returns the option values of the named <select> control.
func selectOptions(doc *html.Node, selectName string) []string {
	var options []string
	var inSelect bool

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "select":
				if attr(n, "name") == selectName || attr(n, "id") == selectName {
					inSelect = true
					for c := n.FirstChild; c != nil; c = c.NextSibling {
						traverse(c)
					}
					inSelect = false
					return
				}
			case "option":
				if inSelect {
					value := attr(n, "value")
					if value == "" {
						value = strings.TrimSpace(textContent(n))
					}
					options = append(options, value)
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return options
}

// parseTable extracts the table with the given id attribute into a
// RawTable: the <th> row becomes the columns, <td> rows the body.
// Returns nil when no such table exists on the page.
func parseTable(doc *html.Node, tableID string) *models.RawTable {
	node := findTable(doc, tableID)
	if node == nil {
		return nil
	}

	table := &models.RawTable{}
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			headers, cells := rowCells(n)
			if len(headers) > 0 && len(table.Columns) == 0 {
				table.Columns = headers
			} else if len(cells) > 0 {
				table.Rows = append(table.Rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(node)

	if len(table.Columns) == 0 {
		return nil
	}
	return table
}

// findTable locates a <table> by id. When tableID is empty the first table
// on the page wins.
func findTable(doc *html.Node, tableID string) *html.Node {
	var found *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "table" {
			if tableID == "" || attr(n, "id") == tableID {
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return found
}

// rowCells splits one <tr> into header cells and body cells.
func rowCells(tr *html.Node) (headers, cells []string) {
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "th":
			headers = append(headers, normalize.Clean(textContent(c)))
		case "td":
			cells = append(cells, normalize.Clean(textContent(c)))
		}
	}
	return headers, cells
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
