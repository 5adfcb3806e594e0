// Package exchange implements the raw client for the TradeOgre v1 REST API.
// See https://tradeogre.com/help/api for endpoint details.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeogre/internal/domain"
	"github.com/vadiminshakov/tradeogre/pkg/numparse"
)

// DefaultBaseURL base HTTP URL for v1 API calls.
const DefaultBaseURL = "https://tradeogre.com/api/v1"

const requestTimeout = 30 * time.Second

// Client talks to the exchange's versioned REST API and decodes its
// string-typed JSON responses into domain values. Public endpoints use GET;
// account endpoints use POST with form-encoded bodies and HTTP basic auth
// built from the API key pair.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New creates a client against baseURL (DefaultBaseURL when empty).
func New(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json")

	return &Client{http: httpc, logger: logger}
}

// market fields arrive stringified and inconsistently formatted
type marketResult struct {
	InitialPrice string `json:"initialprice"`
	Price        string `json:"price"`
	High         string `json:"high"`
	Low          string `json:"low"`
	Volume       string `json:"volume"`
	Bid          string `json:"bid"`
	Ask          string `json:"ask"`
}

func (r marketResult) toMarketData() domain.MarketData {
	return domain.MarketData{
		InitialPrice: numparse.Float(r.InitialPrice),
		Price:        numparse.Float(r.Price),
		High:         numparse.Float(r.High),
		Low:          numparse.Float(r.Low),
		Volume:       numparse.Float(r.Volume),
		Bid:          numparse.Float(r.Bid),
		Ask:          numparse.Float(r.Ask),
	}
}

// Markets retrieves all markets with their 24-hour statistics. Entries
// whose key is not a valid currency pair are dropped.
func (c *Client) Markets(ctx context.Context) ([]domain.Market, error) {
	var entries []map[string]marketResult
	if err := c.get(ctx, "markets", "/markets", &entries); err != nil {
		return nil, err
	}

	markets := make([]domain.Market, 0, len(entries))
	for _, entry := range entries {
		for key, result := range entry {
			pair, ok := domain.ParsePair(key)
			if !ok {
				c.logger.Debug("skipping market with unparsable pair", zap.String("key", key))
				continue
			}
			markets = append(markets, domain.Market{Pair: pair, Data: result.toMarketData()})
		}
	}
	return markets, nil
}

// Ticker retrieves the 24-hour statistics for one market.
func (c *Client) Ticker(ctx context.Context, pair domain.CurrencyPair) (domain.Market, error) {
	const op = "ticker"
	var result struct {
		marketResult
		Success string `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.get(ctx, op, "/ticker/"+pair.String(), &result); err != nil {
		return domain.Market{}, err
	}
	if result.Success == "false" {
		return domain.Market{}, &Error{Kind: KindDomain, Op: op, Message: result.Error}
	}
	// an error body decodes cleanly into empty fields; don't let it pass as
	// a zero-valued market
	if result.Price == "" && result.Bid == "" && result.Ask == "" {
		return domain.Market{}, &Error{Kind: KindUnknown, Op: op, Message: "no market data in response"}
	}
	return domain.Market{Pair: pair, Data: result.toMarketData()}, nil
}

// OrderBook retrieves the resting buy and sell orders for a market. Entry
// order follows the server's map encoding and is not defined.
func (c *Client) OrderBook(ctx context.Context, pair domain.CurrencyPair) (domain.OrderBook, error) {
	const op = "orders"
	var result struct {
		Success string            `json:"success"`
		Error   string            `json:"error"`
		Buy     map[string]string `json:"buy"`
		Sell    map[string]string `json:"sell"`
	}
	if err := c.get(ctx, op, "/orders/"+pair.String(), &result); err != nil {
		return domain.OrderBook{}, err
	}
	if result.Success == "false" {
		return domain.OrderBook{}, &Error{Kind: KindDomain, Op: op, Message: result.Error}
	}

	book := domain.OrderBook{Pair: pair}
	for price, volume := range result.Buy {
		book.Buys = append(book.Buys, domain.BuyOrder{Price: numparse.Float(price), Volume: numparse.Float(volume)})
	}
	for price, volume := range result.Sell {
		book.Sells = append(book.Sells, domain.SellOrder{Price: numparse.Float(price), Volume: numparse.Float(volume)})
	}
	return book, nil
}

// History retrieves the most recent trades for a market.
func (c *Client) History(ctx context.Context, pair domain.CurrencyPair) (domain.PastOrders, error) {
	var results []struct {
		Date     int64  `json:"date"`
		Type     string `json:"type"`
		Price    string `json:"price"`
		Quantity string `json:"quantity"`
	}
	if err := c.get(ctx, "history", "/history/"+pair.String(), &results); err != nil {
		return domain.PastOrders{}, err
	}

	past := domain.PastOrders{Pair: pair, Orders: make([]domain.PastOrder, 0, len(results))}
	for _, r := range results {
		past.Orders = append(past.Orders, domain.PastOrder{
			Date:   time.Unix(r.Date, 0).UTC(),
			Action: domain.ParseAction(r.Type),
			Price:  numparse.Float(r.Price),
			Volume: numparse.Float(r.Quantity),
		})
	}
	return past, nil
}

// Balances retrieves all account balances. Dust below
// domain.MinListedBalance is dropped.
func (c *Client) Balances(ctx context.Context, keys domain.APIKeys) ([]domain.Balance, error) {
	const op = "account/balances"
	var result struct {
		Success  bool              `json:"success"`
		Error    string            `json:"error"`
		Balances map[string]string `json:"balances"`
	}
	if err := c.postForm(ctx, op, "/account/balances", "", keys, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, &Error{Kind: KindDomain, Op: op, Message: result.Error}
	}

	balances := make([]domain.Balance, 0, len(result.Balances))
	for currency, value := range result.Balances {
		v := numparse.Float(value)
		if v < domain.MinListedBalance {
			continue
		}
		balances = append(balances, domain.Balance{Currency: currency, Balance: v})
	}
	return balances, nil
}

// Balance retrieves the account's total balance of one currency. The
// server also reports an available amount; only the total is used.
func (c *Client) Balance(ctx context.Context, currency domain.Currency, keys domain.APIKeys) (domain.Balance, error) {
	const op = "account/balance"
	var result struct {
		Success   bool   `json:"success"`
		Error     string `json:"error"`
		Balance   string `json:"balance"`
		Available string `json:"available"`
	}
	body := "currency=" + currency
	if err := c.postForm(ctx, op, "/account/balance", body, keys, &result); err != nil {
		return domain.Balance{}, err
	}
	if !result.Success {
		return domain.Balance{}, &Error{Kind: KindDomain, Op: op, Message: result.Error}
	}
	return domain.Balance{Currency: currency, Balance: numparse.Float(result.Balance)}, nil
}

// Orders retrieves the account's open orders, optionally restricted to one
// market. Entries with an unparsable pair or malformed id are dropped.
func (c *Client) Orders(ctx context.Context, keys domain.APIKeys, pair *domain.CurrencyPair) ([]domain.PendingOrder, error) {
	var results []struct {
		Market   string `json:"market"`
		UUID     string `json:"uuid"`
		Date     int64  `json:"date"`
		Type     string `json:"type"`
		Price    string `json:"price"`
		Quantity string `json:"quantity"`
	}
	body := ""
	if pair != nil {
		body = "market=" + pair.String()
	}
	if err := c.postForm(ctx, "account/orders", "/account/orders", body, keys, &results); err != nil {
		return nil, err
	}

	orders := make([]domain.PendingOrder, 0, len(results))
	for _, r := range results {
		orderPair, ok := domain.ParsePair(r.Market)
		if !ok {
			c.logger.Debug("skipping order with unparsable market", zap.String("market", r.Market))
			continue
		}
		id, err := uuid.Parse(r.UUID)
		if err != nil {
			c.logger.Debug("skipping order with malformed uuid", zap.String("uuid", r.UUID))
			continue
		}
		orders = append(orders, domain.PendingOrder{
			Pair:   orderPair,
			ID:     id,
			Date:   time.Unix(r.Date, 0).UTC(),
			Action: domain.ParseAction(r.Type),
			Price:  numparse.Float(r.Price),
			Volume: numparse.Float(r.Quantity),
		})
	}
	return orders, nil
}

// Buy submits a buy order for quantity of the pair's other currency at
// price in the base currency. Returns the id of the resting order.
func (c *Client) Buy(ctx context.Context, pair domain.CurrencyPair, quantity, price float64, keys domain.APIKeys) (uuid.UUID, error) {
	return c.submitOrder(ctx, "order/buy", "/order/buy", pair, quantity, price, keys)
}

// Sell submits a sell order for quantity of the pair's other currency at
// price in the base currency. Returns the id of the resting order.
func (c *Client) Sell(ctx context.Context, pair domain.CurrencyPair, quantity, price float64, keys domain.APIKeys) (uuid.UUID, error) {
	return c.submitOrder(ctx, "order/sell", "/order/sell", pair, quantity, price, keys)
}

func (c *Client) submitOrder(ctx context.Context, op, path string, pair domain.CurrencyPair, quantity, price float64, keys domain.APIKeys) (uuid.UUID, error) {
	if !isFinite(quantity) || !isFinite(price) {
		return uuid.Nil, &Error{Kind: KindUnknown, Op: op, Message: "non-finite order amount"}
	}
	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		UUID    string `json:"uuid"`
	}
	body := fmt.Sprintf("market=%s&quantity=%s&price=%s", pair.String(), formatAmount(quantity), formatAmount(price))
	if err := c.postForm(ctx, op, path, body, keys, &result); err != nil {
		return uuid.Nil, err
	}
	if !result.Success {
		return uuid.Nil, &Error{Kind: KindDomain, Op: op, Message: result.Error}
	}
	id, err := uuid.Parse(result.UUID)
	if err != nil {
		return uuid.Nil, &Error{Kind: KindUnknown, Op: op, Message: "could not process provided uuid", Err: err}
	}
	return id, nil
}

// Cancel removes the order with id from the order book. The server reports
// failure when the order no longer exists.
func (c *Client) Cancel(ctx context.Context, id uuid.UUID, keys domain.APIKeys) error {
	const op = "order/cancel"
	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	body := "uuid=" + formatOrderID(id)
	if err := c.postForm(ctx, op, "/order/cancel", body, keys, &result); err != nil {
		return err
	}
	if !result.Success {
		return &Error{Kind: KindDomain, Op: op, Message: result.Error}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	return c.handle(op, resp, err, out)
}

func (c *Client) postForm(ctx context.Context, op, path, body string, keys domain.APIKeys, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetBasicAuth(keys.Public, keys.Private).
		SetHeader("Content-Type", "application/x-www-form-urlencoded")
	if body != "" {
		req.SetBody(body)
	}
	resp, err := req.Post(path)
	return c.handle(op, resp, err, out)
}

// handle is the single normalization point for response failures.
func (c *Client) handle(op string, resp *resty.Response, err error, out any) error {
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	if resp.StatusCode() != http.StatusOK || len(resp.Body()) == 0 {
		return &Error{Kind: KindServer, Op: op, Message: fmt.Sprintf("bad response: status %d, %d bytes", resp.StatusCode(), len(resp.Body()))}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return nil
}
