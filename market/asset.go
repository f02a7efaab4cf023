package market

// Asset defines a tradable symbol and its spread in points. The spread is
// the broker's cut: it is added to the execution price when buying and to
// the close price when a sell position is unwound.
type Asset struct {
	Symbol string
	Spread float64
}

// Catalog is an immutable symbol to spread lookup, built once when the
// broker engine is constructed.
type Catalog struct {
	spreads map[string]float64
	symbols []string
}

func NewCatalog(assets []Asset) *Catalog {
	c := &Catalog{spreads: make(map[string]float64, len(assets))}
	for _, a := range assets {
		if _, ok := c.spreads[a.Symbol]; !ok {
			c.symbols = append(c.symbols, a.Symbol)
		}
		c.spreads[a.Symbol] = a.Spread
	}
	return c
}

// Known reports whether symbol is part of the catalog.
func (c *Catalog) Known(symbol string) bool {
	_, ok := c.spreads[symbol]
	return ok
}

// Spread returns the spread for symbol in points, 0 for unknown symbols.
func (c *Catalog) Spread(symbol string) float64 {
	return c.spreads[symbol]
}

// Symbols returns the catalog's symbols in the order they were configured.
func (c *Catalog) Symbols() []string {
	out := make([]string, len(c.symbols))
	copy(out, c.symbols)
	return out
}
