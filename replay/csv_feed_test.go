package replay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maufadel/trading-market-simulator/market"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestCSVFeedFetch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "AAPL.csv",
		"time,open,high,low,close\n"+
			"2024-03-01T14:30:00Z,100,101,99,100.5\n"+
			"2024-03-01T14:31:00Z,100.5,102,100,101\n"+
			"2024-03-01T14:32:00Z,101,103,101,102\n")
	writeFile(t, dir, "GOOG.csv",
		"2024-03-01T14:30:00Z,200,201,199,200.5\n"+
			"2024-03-01T14:32:00Z,201,202,200,201.5\n")

	feed := NewCSVFeed(dir)
	start := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	sets, err := feed.Fetch(context.Background(), []string{"AAPL", "GOOG"}, start, start.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, sets, 3)

	assert.Len(t, sets[0].Bars, 2)
	assert.Equal(t, 100.5, sets[0].Bars["AAPL"].Close)
	assert.Equal(t, 200.5, sets[0].Bars["GOOG"].Close)

	// GOOG has a gap at 14:31.
	assert.Len(t, sets[1].Bars, 1)
	assert.Equal(t, market.Bar{Open: 100.5, High: 102, Low: 100, Close: 101}, sets[1].Bars["AAPL"])

	for i := 1; i < len(sets); i++ {
		assert.True(t, sets[i-1].Time.Before(sets[i].Time))
	}
}

func TestCSVFeedRangeBounds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "AAPL.csv",
		"2024-03-01T14:29:00Z,99,99,99,99\n"+
			"2024-03-01T14:30:00Z,100,100,100,100\n"+
			"2024-03-01T14:31:00Z,101,101,101,101\n"+
			"2024-03-01T14:32:00Z,102,102,102,102\n")

	feed := NewCSVFeed(dir)
	start := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	// Both bounds are included.
	sets, err := feed.Fetch(context.Background(), []string{"AAPL"}, start, start.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, 100.0, sets[0].Bars["AAPL"].Close)
	assert.Equal(t, 101.0, sets[1].Bars["AAPL"].Close)
}

func TestCSVFeedMissingSymbol(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "AAPL.csv", "2024-03-01T14:30:00Z,100,100,100,100\n")

	feed := NewCSVFeed(dir)
	start := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	_, err := feed.Fetch(context.Background(), []string{"AAPL", "MSFT"}, start, start.Add(time.Minute))
	require.Error(t, err)
	assert.True(t, errors.Is(err, market.ErrDataUnavailable))
}

func TestCSVFeedEmptyRange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "AAPL.csv", "2024-03-01T14:30:00Z,100,100,100,100\n")

	feed := NewCSVFeed(dir)
	start := time.Date(2024, 3, 2, 14, 30, 0, 0, time.UTC)

	_, err := feed.Fetch(context.Background(), []string{"AAPL"}, start, start.Add(time.Minute))
	require.Error(t, err)
	assert.True(t, errors.Is(err, market.ErrDataUnavailable))
}

func TestCSVFeedBadRow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "AAPL.csv", "2024-03-01T14:30:00Z,100,abc,100,100\n")

	feed := NewCSVFeed(dir)
	start := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

	_, err := feed.Fetch(context.Background(), []string{"AAPL"}, start, start.Add(time.Minute))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}
