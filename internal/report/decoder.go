package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

// Row markers used by the Genbox statement layout. The trade history sits
// between the start and end markers; rows matching a skip marker carry
// balance operations or generator banners, not trades.
const (
	startMarker = "Closed Transactions:"
	endMarker   = "Closed P/L:"
)

var skipMarkers = []string{"Genbox", "balance", "Deposit"}

// tradeColumnCount is the fixed Genbox column layout: Ticket, Open Time,
// Type, Size, Item, Price, S/L, T/P, Close Time, Price, Commission, Taxes,
// Swap, Profit.
const tradeColumnCount = 14

const headerFirstColumn = "Ticket"

// Decoder parses Genbox backtest statements.
type Decoder struct {
	logger *logrus.Logger
}

// NewDecoder creates a decoder. A nil logger falls back to a default one.
func NewDecoder(logger *logrus.Logger) *Decoder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Decoder{logger: logger}
}

// DecodeFile reads and decodes a single report file.
func (d *Decoder) DecodeFile(path string) (*models.StrategyReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	rep, err := d.Decode(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}

	rep.SourceFile = path
	rep.StrategyName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	d.logger.WithFields(logrus.Fields{
		"file":   path,
		"trades": rep.TradeCount(),
	}).Debug("Decoded report")

	return rep, nil
}

// Decode parses one statement from r. Any schema mismatch rejects the
// whole statement with a *ParseError.
func (d *Decoder) Decode(r io.Reader) (*models.StrategyReport, error) {
	doc, err := html.Parse(newReportReader(r))
	if err != nil {
		return nil, &ParseError{Reason: "unreadable HTML document", Err: err}
	}

	table := findFirstTable(doc)
	if table == nil {
		return nil, &ParseError{Reason: "no transaction table found"}
	}

	collected, deposit, err := collectTradeRows(tableRows(table))
	if err != nil {
		return nil, err
	}

	trades, err := parseTradeRows(collected)
	if err != nil {
		return nil, err
	}

	rep := &models.StrategyReport{
		InitialBalance: deposit,
		Trades:         trades,
	}
	rep.FinalBalance = deposit.Add(rep.NetProfit())
	if len(trades) > 0 {
		rep.PeriodStart = trades[0].OpenTime
		rep.PeriodEnd = trades[len(trades)-1].CloseTime
		for _, t := range trades {
			if t.CloseTime.After(rep.PeriodEnd) {
				rep.PeriodEnd = t.CloseTime
			}
		}
	}
	return rep, nil
}

// collectTradeRows walks the table rows and returns those between the
// start and end markers, minus skipped balance/banner rows. The initial
// deposit travels on a skipped row, so it is captured on the way.
func collectTradeRows(rows []*html.Node) ([]*html.Node, decimal.Decimal, error) {
	collecting := false
	sawEnd := false
	deposit := decimal.Zero
	var collected []*html.Node

	for _, tr := range rows {
		text := nodeText(tr)
		if !collecting {
			if strings.Contains(text, startMarker) {
				collecting = true
			}
			continue
		}
		if containsAny(text, skipMarkers) {
			if strings.Contains(text, "Deposit") {
				if v, ok := lastNumericCell(tr); ok {
					deposit = v
				}
			}
			continue
		}
		if strings.Contains(text, endMarker) {
			sawEnd = true
			break
		}
		collected = append(collected, tr)
	}

	if !collecting {
		return nil, deposit, &ParseError{Reason: fmt.Sprintf("missing %q marker", startMarker)}
	}
	if !sawEnd {
		return nil, deposit, &ParseError{Reason: fmt.Sprintf("truncated statement: missing %q marker", endMarker)}
	}
	return collected, deposit, nil
}

// parseTradeRows converts collected rows into trade records. The first
// collected row is the column header and the last one holds the column
// totals; neither describes a trade.
func parseTradeRows(collected []*html.Node) ([]models.TradeRecord, error) {
	if len(collected) == 0 {
		return nil, &ParseError{Reason: "missing trade table header"}
	}

	header := rowCells(collected[0])
	if len(header) == 0 || header[0] != headerFirstColumn {
		return nil, &ParseError{Reason: fmt.Sprintf("unexpected trade table header, want %q first", headerFirstColumn)}
	}

	body := collected[1:]
	if len(body) > 0 {
		body = body[:len(body)-1]
	}

	trades := make([]models.TradeRecord, 0, len(body))
	for i, tr := range body {
		rec, err := parseTradeRow(rowCells(tr))
		if err != nil {
			return nil, &ParseError{Row: i + 1, Reason: "invalid trade row", Err: err}
		}
		trades = append(trades, rec)
	}
	return trades, nil
}

func parseTradeRow(cells []string) (models.TradeRecord, error) {
	var rec models.TradeRecord
	if len(cells) != tradeColumnCount {
		return rec, fmt.Errorf("expected %d columns, got %d", tradeColumnCount, len(cells))
	}

	ticket, err := strconv.Atoi(cells[0])
	if err != nil {
		return rec, fmt.Errorf("invalid ticket %q: %w", cells[0], err)
	}
	openTime, err := parseReportTime(cells[1])
	if err != nil {
		return rec, fmt.Errorf("invalid open time %q: %w", cells[1], err)
	}
	direction, err := parseDirection(cells[2])
	if err != nil {
		return rec, err
	}
	volume, err := parseReportDecimal(cells[3])
	if err != nil {
		return rec, fmt.Errorf("invalid size %q: %w", cells[3], err)
	}
	openPrice, err := parseReportDecimal(cells[5])
	if err != nil {
		return rec, fmt.Errorf("invalid open price %q: %w", cells[5], err)
	}
	stopLoss, err := parseReportDecimal(cells[6])
	if err != nil {
		return rec, fmt.Errorf("invalid stop loss %q: %w", cells[6], err)
	}
	takeProfit, err := parseReportDecimal(cells[7])
	if err != nil {
		return rec, fmt.Errorf("invalid take profit %q: %w", cells[7], err)
	}
	closeTime, err := parseReportTime(cells[8])
	if err != nil {
		return rec, fmt.Errorf("invalid close time %q: %w", cells[8], err)
	}
	closePrice, err := parseReportDecimal(cells[9])
	if err != nil {
		return rec, fmt.Errorf("invalid close price %q: %w", cells[9], err)
	}
	// cells[10:13] are Commission, Taxes and Swap; the analyzer drops them.
	profit, err := parseReportDecimal(cells[13])
	if err != nil {
		return rec, fmt.Errorf("invalid profit %q: %w", cells[13], err)
	}

	rec = models.TradeRecord{
		Ticket:     ticket,
		OpenTime:   openTime,
		Direction:  direction,
		Volume:     volume,
		Symbol:     cells[4],
		OpenPrice:  openPrice,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		CloseTime:  closeTime,
		ClosePrice: closePrice,
		Profit:     profit,
	}
	return rec, nil
}
