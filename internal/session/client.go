// Package session wraps the raw exchange client behind two capability
// levels and owns the credential state machine that switches between them.
package session

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/tradeogre/internal/domain"
	"github.com/vadiminshakov/tradeogre/internal/exchange"
)

// Unauthenticated exposes only the endpoints that need no API keys. All
// failures are rewrapped as *domain.AppError.
type Unauthenticated struct {
	api *exchange.Client
}

// NewUnauthenticated creates a client over the raw API client.
func NewUnauthenticated(api *exchange.Client) *Unauthenticated {
	return &Unauthenticated{api: api}
}

// MarketsOverview fetches all markets, drops those without volume and
// groups the rest by base currency. Group order is not defined.
func (u *Unauthenticated) MarketsOverview(ctx context.Context) ([]domain.ExchangeMarket, error) {
	markets, err := u.api.Markets(ctx)
	if err != nil {
		return nil, domain.NewAPIError(err)
	}

	grouped := make(map[domain.Currency][]domain.Market)
	for _, market := range markets {
		if market.Data.Volume <= 0 {
			continue
		}
		grouped[market.Pair.Base] = append(grouped[market.Pair.Base], market)
	}

	overview := make([]domain.ExchangeMarket, 0, len(grouped))
	for base, ms := range grouped {
		overview = append(overview, domain.ExchangeMarket{Base: base, Markets: ms})
	}
	return overview, nil
}

// MarketDetails fetches ticker, trade history and order book concurrently
// and combines them once all three succeed. The first failing leg fails
// the whole operation; there are no partial results.
func (u *Unauthenticated) MarketDetails(ctx context.Context, pair domain.CurrencyPair) (domain.MarketDetails, error) {
	var (
		market  domain.Market
		history domain.PastOrders
		book    domain.OrderBook
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		market, err = u.api.Ticker(ctx, pair)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = u.api.History(ctx, pair)
		return err
	})
	g.Go(func() error {
		var err error
		book, err = u.api.OrderBook(ctx, pair)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.MarketDetails{}, domain.NewAPIError(err)
	}

	return domain.MarketDetails{
		Market:  market,
		History: history.Orders,
		Buys:    book.Buys,
		Sells:   book.Sells,
	}, nil
}

// Authenticate creates an authenticated client sharing this client's
// transport.
func (u *Unauthenticated) Authenticate(keys domain.APIKeys) *Authenticated {
	return &Authenticated{Unauthenticated: u, keys: &keys}
}

// Authenticated adds account and order endpoints on top of the
// unauthenticated capability level.
type Authenticated struct {
	*Unauthenticated
	keys *domain.APIKeys
}

// Unauthenticate drops account-level access, returning the underlying
// unauthenticated client.
func (a *Authenticated) Unauthenticate() *Unauthenticated {
	return a.Unauthenticated
}

// credentials guards account operations. The state machine never hands out
// an Authenticated client without keys, but keep the check anyway.
func (a *Authenticated) credentials() (domain.APIKeys, error) {
	if a.keys == nil {
		return domain.APIKeys{}, domain.ErrNotAuthenticated()
	}
	return *a.keys, nil
}

// BalancesFor fetches the account's balances of both pair currencies
// concurrently. First failure wins, as in MarketDetails.
func (a *Authenticated) BalancesFor(ctx context.Context, pair domain.CurrencyPair) (domain.PairBalances, error) {
	keys, err := a.credentials()
	if err != nil {
		return domain.PairBalances{}, err
	}

	var base, other domain.Balance
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		base, err = a.api.Balance(ctx, pair.Base, keys)
		return err
	})
	g.Go(func() error {
		var err error
		other, err = a.api.Balance(ctx, pair.Other, keys)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.PairBalances{}, domain.NewAPIError(err)
	}

	return domain.PairBalances{Base: base.Balance, Other: other.Balance}, nil
}

// AllBalances fetches every account balance above the listing dust cutoff.
func (a *Authenticated) AllBalances(ctx context.Context) ([]domain.Balance, error) {
	keys, err := a.credentials()
	if err != nil {
		return nil, err
	}
	balances, err := a.api.Balances(ctx, keys)
	if err != nil {
		return nil, domain.NewAPIError(err)
	}
	return balances, nil
}

// AllOrders fetches the account's open orders across all markets.
func (a *Authenticated) AllOrders(ctx context.Context) ([]domain.PendingOrder, error) {
	return a.orders(ctx, nil)
}

// OrdersFor fetches the account's open orders in one market.
func (a *Authenticated) OrdersFor(ctx context.Context, pair domain.CurrencyPair) ([]domain.PendingOrder, error) {
	return a.orders(ctx, &pair)
}

func (a *Authenticated) orders(ctx context.Context, pair *domain.CurrencyPair) ([]domain.PendingOrder, error) {
	keys, err := a.credentials()
	if err != nil {
		return nil, err
	}
	orders, err := a.api.Orders(ctx, keys, pair)
	if err != nil {
		return nil, domain.NewAPIError(err)
	}
	return orders, nil
}

// Buy submits a buy order for quantity of the pair's other currency at
// price in the base currency.
func (a *Authenticated) Buy(ctx context.Context, pair domain.CurrencyPair, quantity, price float64) error {
	keys, err := a.credentials()
	if err != nil {
		return err
	}
	if _, err := a.api.Buy(ctx, pair, quantity, price, keys); err != nil {
		return domain.NewAPIError(err)
	}
	return nil
}

// Sell submits a sell order for quantity of the pair's other currency at
// price in the base currency.
func (a *Authenticated) Sell(ctx context.Context, pair domain.CurrencyPair, quantity, price float64) error {
	keys, err := a.credentials()
	if err != nil {
		return err
	}
	if _, err := a.api.Sell(ctx, pair, quantity, price, keys); err != nil {
		return domain.NewAPIError(err)
	}
	return nil
}

// Cancel removes one of the account's pending orders.
func (a *Authenticated) Cancel(ctx context.Context, id uuid.UUID) error {
	keys, err := a.credentials()
	if err != nil {
		return err
	}
	if err := a.api.Cancel(ctx, id, keys); err != nil {
		return domain.NewAPIError(err)
	}
	return nil
}
