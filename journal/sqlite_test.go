package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	assert.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','equity')`)
	assert.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteRecordAndGetTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	open := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	closeT := open.Add(25 * time.Minute)

	rec := TradeRecord{
		PositionID: "01HV5TZG4V0000000000000001",
		Account:    "alice",
		Symbol:     "AAPL",
		Side:       "buy",
		Units:      9.9502,
		OpenPrice:  100.5,
		ClosePrice: 102,
		OpenTime:   open,
		CloseTime:  closeT,
		Profit:     14.9253,
	}

	assert.NoError(t, j.RecordTrade(rec))

	got, err := j.GetTrade(rec.PositionID)
	assert.NoError(t, err)
	assert.Equal(t, rec.Account, got.Account)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Side, got.Side)
	assert.InDelta(t, rec.Units, got.Units, 1e-9)
	assert.InDelta(t, rec.Profit, got.Profit, 1e-9)
	assert.True(t, got.CloseTime.Equal(closeT))

	_, err = j.GetTrade("missing")
	assert.Error(t, err)
}

func TestSQLiteListTradesClosedBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		assert.NoError(t, j.RecordTrade(TradeRecord{
			PositionID: string(rune('A' + i)),
			Account:    "alice",
			Symbol:     "AAPL",
			Side:       "sell",
			OpenTime:   base,
			CloseTime:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := j.ListTradesClosedBetween(base, base.Add(2*time.Minute))
	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].PositionID)
	assert.Equal(t, "B", recs[1].PositionID)
}

func TestSQLiteRecordEquity(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	assert.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:          time.Date(2024, 3, 1, 9, 31, 0, 0, time.UTC),
		Account:       "alice",
		Cash:          4000,
		Equity:        5002.5,
		OpenPositions: 1,
	}))
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var (
		account string
		cash    float64
		equity  float64
		open    int
	)
	row := db.QueryRow(`SELECT account, cash, equity, open_positions FROM equity`)
	assert.NoError(t, row.Scan(&account, &cash, &equity, &open))
	assert.Equal(t, "alice", account)
	assert.Equal(t, 4000.0, cash)
	assert.Equal(t, 5002.5, equity)
	assert.Equal(t, 1, open)
}
