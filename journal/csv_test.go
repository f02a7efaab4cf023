package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)
	return j, tradesPath, equityPath
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	j, tradesPath, equityPath := newTestCSV(t)
	assert.NoError(t, j.Close())

	trades := readAll(t, tradesPath)
	require.Len(t, trades, 1)
	assert.Equal(t, []string{"position_id", "account", "symbol", "side", "units", "open_price", "close_price", "open_time", "close_time", "profit"}, trades[0])

	equity := readAll(t, equityPath)
	require.Len(t, equity, 1)
	assert.Equal(t, []string{"time", "account", "cash", "equity", "open_positions"}, equity[0])
}

func TestCSVJournalRecords(t *testing.T) {
	t.Parallel()

	j, tradesPath, equityPath := newTestCSV(t)

	open := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(TradeRecord{
		PositionID: "P1",
		Account:    "alice",
		Symbol:     "GOOG",
		Side:       "sell",
		Units:      10,
		OpenPrice:  100,
		ClosePrice: 90.5,
		OpenTime:   open,
		CloseTime:  open.Add(time.Minute),
		Profit:     95,
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:          open.Add(time.Minute),
		Account:       "alice",
		Cash:          5095,
		Equity:        5095,
		OpenPositions: 0,
	}))
	assert.NoError(t, j.Close())

	trades := readAll(t, tradesPath)
	require.Len(t, trades, 2)
	assert.Equal(t, []string{"P1", "alice", "GOOG", "sell", "10", "100", "90.5", "2024-03-01T09:30:00Z", "2024-03-01T09:31:00Z", "95"}, trades[1])

	equity := readAll(t, equityPath)
	require.Len(t, equity, 2)
	assert.Equal(t, []string{"2024-03-01T09:31:00Z", "alice", "5095", "5095", "0"}, equity[1])
}
