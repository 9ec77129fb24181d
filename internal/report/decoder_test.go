package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

const fixtureReport = "testdata/alpha_IS.htm"

func TestDecodeFileTradeCount(t *testing.T) {
	d := NewDecoder(nil)

	rep, err := d.DecodeFile(fixtureReport)
	require.NoError(t, err)
	require.Equal(t, 4, rep.TradeCount())

	assert.Equal(t, "alpha_IS", rep.StrategyName)
	assert.Equal(t, "10000", rep.InitialBalance.String())
	assert.Equal(t, "10010", rep.FinalBalance.String())
	assert.Equal(t, time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC), rep.PeriodStart)
	assert.Equal(t, time.Date(2023, 1, 5, 16, 20, 0, 0, time.UTC), rep.PeriodEnd)

	first := rep.Trades[0]
	assert.Equal(t, 2, first.Ticket)
	assert.Equal(t, models.TradeBuy, first.Direction)
	assert.Equal(t, "eurusd", first.Symbol)
	assert.Equal(t, "0.1", first.Volume.String())
	assert.Equal(t, "10", first.Profit.String())
	assert.True(t, first.IsWin())

	last := rep.Trades[3]
	assert.Equal(t, models.TradeSell, last.Direction)
	assert.True(t, last.IsLoss())
}

func TestDecodeZeroTrades(t *testing.T) {
	d := NewDecoder(nil)

	rep, err := d.DecodeFile("testdata/idle_OS.htm")
	require.NoError(t, err)

	assert.Equal(t, 0, rep.TradeCount())
	assert.Equal(t, "10000", rep.InitialBalance.String())
	assert.True(t, rep.FinalBalance.Equal(rep.InitialBalance))
	assert.True(t, rep.PeriodStart.IsZero())
}

func TestDecodeTruncatedStatement(t *testing.T) {
	d := NewDecoder(nil)

	_, err := d.DecodeFile("testdata/truncated.htm")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Reason, "truncated")
	assert.Equal(t, "testdata/truncated.htm", pe.File)
}

func TestDecodeMissingTable(t *testing.T) {
	d := NewDecoder(nil)

	_, err := d.DecodeFile("testdata/notable.htm")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Reason, "no transaction table")
}

func TestDecodeBadNumericField(t *testing.T) {
	d := NewDecoder(nil)

	_, err := d.DecodeFile("testdata/badnumber.htm")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Row)
}

func TestDecodeMissingStartMarker(t *testing.T) {
	d := NewDecoder(nil)

	_, err := d.Decode(bytes.NewReader([]byte("<html><body><table><tr><td>Ticket</td></tr></table></body></html>")))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Reason, "Closed Transactions")
}

// Genbox terminals export statements as UTF-16LE with a BOM; the decoder
// must handle them transparently.
func TestDecodeUTF16Statement(t *testing.T) {
	raw, err := os.ReadFile(fixtureReport)
	require.NoError(t, err)

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, _, err := transform.Bytes(enc, raw)
	require.NoError(t, err)

	d := NewDecoder(nil)
	rep, err := d.Decode(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, 4, rep.TradeCount())
}

func TestDecodeFileNotFound(t *testing.T) {
	d := NewDecoder(nil)

	_, err := d.DecodeFile(filepath.Join(t.TempDir(), "missing.htm"))
	require.Error(t, err)

	var pe *ParseError
	assert.False(t, errors.As(err, &pe), "I/O errors are not parse errors")
}
