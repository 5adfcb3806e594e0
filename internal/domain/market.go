package domain

// MarketData aggregated trading statistics for a market over the last
// 24 hours. Values come from the exchange as-is and are not validated.
type MarketData struct {
	// InitialPrice price from 24 hours ago.
	InitialPrice float64
	// Price last traded price.
	Price float64
	High  float64
	Low   float64
	// Volume traded volume over the window.
	Volume float64
	Bid    float64
	Ask    float64
}

// PriceDelta returns the absolute price movement over the window.
func (m MarketData) PriceDelta() float64 {
	return m.Price - m.InitialPrice
}

// PriceDeltaPercent returns the relative price movement. When InitialPrice
// is zero the result is Inf or NaN; callers must tolerate that.
func (m MarketData) PriceDeltaPercent() float64 {
	return (m.Price - m.InitialPrice) / m.InitialPrice
}

// Market a snapshot of one market. Ephemeral, rebuilt on every fetch.
type Market struct {
	Pair CurrencyPair
	Data MarketData
}

// ExchangeMarket all markets priced in one base currency.
type ExchangeMarket struct {
	Base    Currency
	Markets []Market
}

// MarketDetails the aggregate view of a single market: ticker snapshot,
// recent trade history and both sides of the order book.
type MarketDetails struct {
	Market  Market
	History []PastOrder
	Buys    []BuyOrder
	Sells   []SellOrder
}
