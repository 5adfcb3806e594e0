package exchange

import (
	"context"
	"encoding/base64"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/tradeogre/internal/domain"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return New(server.URL, nil), server
}

func TestMarkets(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/markets", r.URL.Path)
		io.WriteString(w, `[
			{"BTC-XMR": {"initialprice":"0.024","price":"0.025","high":"0.026","low":"0.023","volume":"5.5","bid":"0.0249","ask":"0.0251"}},
			{"noseparator": {"initialprice":"1","price":"1","high":"1","low":"1","volume":"1","bid":"1","ask":"1"}},
			{"LTC-GRIN": {"initialprice":"0.001","price":"0.002","high":"0.002","low":"0.001","volume":"2","bid":"0.0019","ask":"0.0021"}}
		]`)
	}))
	defer server.Close()

	markets, err := client.Markets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 2)

	byPair := map[string]domain.Market{}
	for _, m := range markets {
		byPair[m.Pair.String()] = m
	}
	xmr, ok := byPair["BTC-XMR"]
	require.True(t, ok)
	assert.Equal(t, domain.CurrencyPair{Base: "BTC", Other: "XMR"}, xmr.Pair)
	assert.InDelta(t, 0.025, xmr.Data.Price, 1e-12)
	assert.InDelta(t, 5.5, xmr.Data.Volume, 1e-12)
	_, ok = byPair["LTC-GRIN"]
	assert.True(t, ok)
}

func TestTicker(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ticker/BTC-XMR", r.URL.Path)
		io.WriteString(w, `{"success":"true","initialprice":"0.024","price":"0.025","high":"0.026","low":"0.023","volume":"5.5","bid":"0.0249","ask":"0.0251"}`)
	}))
	defer server.Close()

	market, err := client.Ticker(context.Background(), domain.CurrencyPair{Base: "BTC", Other: "XMR"})
	require.NoError(t, err)
	assert.InDelta(t, 0.024, market.Data.InitialPrice, 1e-12)
	assert.InDelta(t, 0.001, market.Data.PriceDelta(), 1e-12)
}

func TestOrderBook(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/BTC-XMR", r.URL.Path)
		io.WriteString(w, `{"success":"true","buy":{"0.0248":"1.5","0.0247":"3.0"},"sell":{"0.0252":"2.0"}}`)
	}))
	defer server.Close()

	book, err := client.OrderBook(context.Background(), domain.CurrencyPair{Base: "BTC", Other: "XMR"})
	require.NoError(t, err)
	assert.Len(t, book.Buys, 2)
	require.Len(t, book.Sells, 1)
	assert.InDelta(t, 0.0252, book.Sells[0].Price, 1e-12)
	assert.InDelta(t, 2.0, book.Sells[0].Volume, 1e-12)
	assert.ElementsMatch(t, []domain.BuyOrder{
		{Price: 0.0248, Volume: 1.5},
		{Price: 0.0247, Volume: 3.0},
	}, book.Buys)
}

func TestTickerUnknownMarket(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":"false","error":"No market found"}`)
	}))
	defer server.Close()

	_, err := client.Ticker(context.Background(), domain.CurrencyPair{Base: "BTC", Other: "NOPE"})
	exchErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindDomain, exchErr.Kind)
	assert.Contains(t, exchErr.Error(), "No market found")
}

func TestTickerMissingMarketData(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":"true"}`)
	}))
	defer server.Close()

	_, err := client.Ticker(context.Background(), domain.CurrencyPair{Base: "BTC", Other: "XMR"})
	exchErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, exchErr.Kind)
}

func TestOrderBookUnknownMarket(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":"false","error":"No market found"}`)
	}))
	defer server.Close()

	_, err := client.OrderBook(context.Background(), domain.CurrencyPair{Base: "BTC", Other: "NOPE"})
	exchErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindDomain, exchErr.Kind)
	assert.Contains(t, exchErr.Error(), "No market found")
}

func TestHistory(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history/BTC-XMR", r.URL.Path)
		io.WriteString(w, `[
			{"date":1515128233,"type":"sell","price":"0.02454320","quantity":"0.17614230"},
			{"date":1515128234,"type":"buy","price":"0.02454321","quantity":"0.5"}
		]`)
	}))
	defer server.Close()

	past, err := client.History(context.Background(), domain.CurrencyPair{Base: "BTC", Other: "XMR"})
	require.NoError(t, err)
	require.Len(t, past.Orders, 2)
	assert.Equal(t, time.Unix(1515128233, 0).UTC(), past.Orders[0].Date)
	assert.Equal(t, domain.Sell, past.Orders[0].Action)
	assert.Equal(t, domain.Buy, past.Orders[1].Action)
	assert.InDelta(t, 0.02454320, past.Orders[0].Price, 1e-12)
}

func testKeys() domain.APIKeys {
	return domain.APIKeys{Public: "pubkey", Private: "privkey"}
}

func TestBalances(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/account/balances", r.URL.Path)
		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("pubkey:privkey"))
		assert.Equal(t, expected, r.Header.Get("Authorization"))
		io.WriteString(w, `{"success":true,"balances":{"BTC":"0.00000005","XMR":"1.5"}}`)
	}))
	defer server.Close()

	balances, err := client.Balances(context.Background(), testKeys())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "XMR", balances[0].Currency)
	assert.InDelta(t, 1.5, balances[0].Balance, 1e-12)
}

func TestBalancesRejected(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"error":"invalid key"}`)
	}))
	defer server.Close()

	_, err := client.Balances(context.Background(), testKeys())
	exchErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindDomain, exchErr.Kind)
	assert.Contains(t, exchErr.Error(), "invalid key")
}

func TestBalance(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "currency=XMR", string(body))
		io.WriteString(w, `{"success":true,"balance":"5.5","available":"3.0"}`)
	}))
	defer server.Close()

	balance, err := client.Balance(context.Background(), "XMR", testKeys())
	require.NoError(t, err)
	assert.Equal(t, "XMR", balance.Currency)
	// the total balance is used, not the available amount
	assert.InDelta(t, 5.5, balance.Balance, 1e-12)
}

func TestOrders(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "market=BTC-XMR", string(body))
		io.WriteString(w, `[
			{"market":"BTC-XMR","uuid":"a40d849f-ad70-4f44-8a1b-2c0b09c8b4b0","date":1515128233,"type":"buy","price":"0.024","quantity":"2.0"},
			{"market":"BTC-XMR","uuid":"not-a-uuid","date":1515128234,"type":"sell","price":"0.025","quantity":"1.0"},
			{"market":"garbage","uuid":"b40d849f-ad70-4f44-8a1b-2c0b09c8b4b0","date":1515128235,"type":"sell","price":"0.026","quantity":"1.0"}
		]`)
	}))
	defer server.Close()

	pair := domain.CurrencyPair{Base: "BTC", Other: "XMR"}
	orders, err := client.Orders(context.Background(), testKeys(), &pair)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, uuid.MustParse("a40d849f-ad70-4f44-8a1b-2c0b09c8b4b0"), orders[0].ID)
	assert.Equal(t, domain.Buy, orders[0].Action)
}

func TestOrdersWithoutMarket(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, string(body))
		io.WriteString(w, `[]`)
	}))
	defer server.Close()

	orders, err := client.Orders(context.Background(), testKeys(), nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestBuy(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/buy", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "market=BTC-XMR&quantity=2.0&price=0.024", string(body))
		io.WriteString(w, `{"success":true,"uuid":"a40d849f-ad70-4f44-8a1b-2c0b09c8b4b0","bnewbalavail":"0.1","snewbalavail":"0.5"}`)
	}))
	defer server.Close()

	id, err := client.Buy(context.Background(), domain.CurrencyPair{Base: "BTC", Other: "XMR"}, 2, 0.024, testKeys())
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("a40d849f-ad70-4f44-8a1b-2c0b09c8b4b0"), id)
}

func TestSubmitOrderNonFinite(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request must be sent for a non-finite amount")
	}))
	defer server.Close()

	pair := domain.CurrencyPair{Base: "BTC", Other: "XMR"}
	_, err := client.Buy(context.Background(), pair, math.NaN(), 0.024, testKeys())
	exchErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, exchErr.Kind)

	_, err = client.Sell(context.Background(), pair, 2, math.Inf(1), testKeys())
	_, ok = AsError(err)
	assert.True(t, ok)
}

func TestSellMalformedUUID(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/sell", r.URL.Path)
		io.WriteString(w, `{"success":true,"uuid":"oops"}`)
	}))
	defer server.Close()

	_, err := client.Sell(context.Background(), domain.CurrencyPair{Base: "BTC", Other: "XMR"}, 2, 0.024, testKeys())
	exchErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknown, exchErr.Kind)
}

func TestCancel(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/cancel", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "uuid=a40d849f-ad70-4f44-8a1b-2c0b09c8b4b0", string(body))
		io.WriteString(w, `{"success":true}`)
	}))
	defer server.Close()

	err := client.Cancel(context.Background(), uuid.MustParse("A40D849F-AD70-4F44-8A1B-2C0B09C8B4B0"), testKeys())
	assert.NoError(t, err)
}

func TestCancelNotFound(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"error":"Order not found"}`)
	}))
	defer server.Close()

	err := client.Cancel(context.Background(), uuid.New(), testKeys())
	exchErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindDomain, exchErr.Kind)
}

func TestErrorClassification(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := client.Markets(context.Background())
		exchErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindServer, exchErr.Kind)
	})

	t.Run("empty body", func(t *testing.T) {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		_, err := client.Markets(context.Background())
		exchErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindServer, exchErr.Kind)
	})

	t.Run("malformed body", func(t *testing.T) {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"this is": "not a market list"}`)
		}))
		defer server.Close()

		_, err := client.Markets(context.Background())
		exchErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindDecode, exchErr.Kind)
	})

	t.Run("transport failure", func(t *testing.T) {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // connection refused from now on

		_, err := client.Markets(context.Background())
		exchErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindTransport, exchErr.Kind)
	})
}
