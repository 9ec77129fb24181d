package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

// MT4 timestamps come with or without seconds depending on the build.
var reportTimeLayouts = []string{
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
}

// findFirstTable returns the first <table> element in document order.
func findFirstTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if table := findFirstTable(c); table != nil {
			return table
		}
	}
	return nil
}

// tableRows collects every <tr> beneath the table in document order.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			rows = append(rows, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

// rowCells returns the cleaned text of every <td>/<th> cell in the row.
func rowCells(tr *html.Node) []string {
	var cells []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th) {
			cells = append(cells, cleanCell(nodeText(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return cells
}

// nodeText concatenates all text nodes beneath n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// lastNumericCell scans the row cells from the right for the first value
// that parses as a number.
func lastNumericCell(tr *html.Node) (decimal.Decimal, bool) {
	cells := rowCells(tr)
	for i := len(cells) - 1; i >= 0; i-- {
		if v, err := parseReportDecimal(cells[i]); err == nil {
			return v, true
		}
	}
	return decimal.Zero, false
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func cleanCell(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(s)
}

func parseReportTime(s string) (time.Time, error) {
	var err error
	for _, layout := range reportTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// parseReportDecimal parses a report number. MT4 pads large figures with
// regular or non-breaking spaces as thousands separators.
func parseReportDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	return decimal.NewFromString(s)
}

func parseDirection(s string) (models.TradeDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return models.TradeBuy, nil
	case "sell":
		return models.TradeSell, nil
	default:
		return "", fmt.Errorf("unknown trade type %q", s)
	}
}
