package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action the side of an order.
type Action int

const (
	Buy Action = iota
	Sell
)

const (
	actionStringBuy  = "buy"
	actionStringSell = "sell"
)

// ParseAction maps the wire form ("buy"/"sell") to an Action. Anything that
// is not "buy" is treated as a sell, matching the exchange's two-value field.
func ParseAction(s string) Action {
	if s == actionStringBuy {
		return Buy
	}
	return Sell
}

// String returns the wire representation of the action.
func (a Action) String() string {
	if a == Buy {
		return actionStringBuy
	}
	return actionStringSell
}

// PendingOrder one of the account's own open orders, identified by ID.
type PendingOrder struct {
	Pair   CurrencyPair
	ID     uuid.UUID
	Date   time.Time
	Action Action
	Price  float64
	Volume float64
}

// BuyOrder a resting bid in a market's order book. No identity.
type BuyOrder struct {
	Price  float64
	Volume float64
}

// SellOrder a resting ask in a market's order book. No identity.
type SellOrder struct {
	Price  float64
	Volume float64
}

// OrderBook both sides of the order book for a market.
type OrderBook struct {
	Pair  CurrencyPair
	Buys  []BuyOrder
	Sells []SellOrder
}

// PastOrder a historical trade in a market. No identity.
type PastOrder struct {
	Date   time.Time
	Action Action
	Price  float64
	Volume float64
}

// PastOrders recent trade history for a market.
type PastOrders struct {
	Pair   CurrencyPair
	Orders []PastOrder
}
