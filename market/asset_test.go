package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogLookup(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]Asset{
		{Symbol: "AAPL", Spread: 0.5},
		{Symbol: "GOOG", Spread: 2.4},
		{Symbol: "QQQ", Spread: 0},
	})

	assert.True(t, c.Known("AAPL"))
	assert.True(t, c.Known("QQQ"))
	assert.False(t, c.Known("MSFT"))

	assert.Equal(t, 0.5, c.Spread("AAPL"))
	assert.Equal(t, 2.4, c.Spread("GOOG"))
	assert.Equal(t, 0.0, c.Spread("QQQ"))
	assert.Equal(t, 0.0, c.Spread("MSFT"))

	assert.Equal(t, []string{"AAPL", "GOOG", "QQQ"}, c.Symbols())
}

func TestCatalogDuplicateSymbolLastWins(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]Asset{
		{Symbol: "AAPL", Spread: 0.5},
		{Symbol: "AAPL", Spread: 0.7},
	})

	assert.Equal(t, 0.7, c.Spread("AAPL"))
	assert.Equal(t, []string{"AAPL"}, c.Symbols())
}
