package domain

const (
	// MinListedBalance balances below this are dropped from full listings.
	MinListedBalance = 1e-7
	// MinDisplayBalance balances below this are hidden from display listings.
	MinDisplayBalance = 1e-6
)

// Balance the account's holdings of one currency.
type Balance struct {
	Currency Currency
	Balance  float64
}

// Displayable filters out dust balances below MinDisplayBalance.
func Displayable(balances []Balance) []Balance {
	out := make([]Balance, 0, len(balances))
	for _, b := range balances {
		if b.Balance >= MinDisplayBalance {
			out = append(out, b)
		}
	}
	return out
}

// PairBalances the account's balances for both sides of a market.
type PairBalances struct {
	Base  float64
	Other float64
}
