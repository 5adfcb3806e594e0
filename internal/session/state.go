package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeogre/internal/domain"
	"github.com/vadiminshakov/tradeogre/internal/events"
	"github.com/vadiminshakov/tradeogre/internal/exchange"
	"github.com/vadiminshakov/tradeogre/internal/secretstore"
)

// CredentialsKey is the secret store key holding the composite
// "public:private" credential string.
const CredentialsKey = "apikey"

type clientState int

const (
	stateUnauthenticated clientState = iota
	stateAuthenticating
	stateAuthenticated
)

// Manager owns the current session: the credential storage, the transitions
// between the unauthenticated and authenticated clients, and the
// login-status signal published on every transition. All data accessors
// dispatch to whichever client the current state holds.
type Manager struct {
	mu     sync.Mutex
	store  secretstore.Store
	status *events.LoginStatusBroadcaster
	logger *zap.Logger

	state    clientState
	unauthed *Unauthenticated
	authed   *Authenticated
}

// NewManager creates a Manager in the Unauthenticated state, restoring the
// Authenticated state immediately when valid stored credentials exist.
func NewManager(api *exchange.Client, store secretstore.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		store:    store,
		status:   events.NewLoginStatusBroadcaster(16),
		logger:   logger,
		state:    stateUnauthenticated,
		unauthed: NewUnauthenticated(api),
	}
	if keys, ok := m.storedKeys(); ok {
		m.authed = m.unauthed.Authenticate(keys)
		m.state = stateAuthenticated
		m.logger.Info("session restored from stored credentials")
	}
	return m
}

func (m *Manager) storedKeys() (domain.APIKeys, bool) {
	value, ok, err := m.store.Get(CredentialsKey)
	if err != nil {
		m.logger.Warn("failed to read stored credentials", zap.Error(err))
		return domain.APIKeys{}, false
	}
	if !ok {
		return domain.APIKeys{}, false
	}
	return domain.ParseAPIKeys(value)
}

// Login persists the credentials and installs an authenticated client.
// Fails with an authentication error when persistence fails or when a
// session is already authenticated.
func (m *Manager) Login(public, private string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := domain.APIKeys{Public: public, Private: private}
	switch m.state {
	case stateUnauthenticated:
		if err := m.store.Set(CredentialsKey, keys.String()); err != nil {
			return domain.NewAuthenticationError(errors.Wrap(err, "persist credentials"))
		}
		m.authed = m.unauthed.Authenticate(keys)
		m.transition(stateAuthenticated)
		return nil
	case stateAuthenticating:
		// pending-login handling is a placeholder: complete immediately
		m.authed = m.unauthed.Authenticate(keys)
		m.transition(stateAuthenticated)
		return nil
	default:
		return domain.NewAuthenticationError(errors.New("already logged in"))
	}
}

// Logout clears stored credentials and returns to the Unauthenticated
// state. Logging out of an unauthenticated session succeeds.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case stateUnauthenticated:
		return nil
	case stateAuthenticating:
		m.authed = nil
		m.transition(stateUnauthenticated)
		return nil
	default:
		if err := m.store.Delete(CredentialsKey); err != nil {
			return domain.NewAuthenticationError(errors.Wrap(err, "clear credentials"))
		}
		m.authed = nil
		m.transition(stateUnauthenticated)
		return nil
	}
}

// transition is called with mu held; every transition republishes the
// login-status signal.
func (m *Manager) transition(next clientState) {
	m.state = next
	m.status.Publish(next == stateAuthenticated)
}

// IsLoggedIn reports whether the session is authenticated.
func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == stateAuthenticated
}

// SubscribeLoginStatus returns a channel receiving the login-status signal.
func (m *Manager) SubscribeLoginStatus() chan bool {
	return m.status.Subscribe()
}

// UnsubscribeLoginStatus removes a channel returned by SubscribeLoginStatus.
func (m *Manager) UnsubscribeLoginStatus(ch chan bool) {
	m.status.Unsubscribe(ch)
}

// current returns the unauthenticated capability of whichever client the
// state holds.
func (m *Manager) current() *Unauthenticated {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == stateAuthenticated {
		return m.authed.Unauthenticated
	}
	return m.unauthed
}

// account returns the authenticated client, or a not-authenticated error.
func (m *Manager) account() (*Authenticated, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != stateAuthenticated {
		return nil, domain.ErrNotAuthenticated()
	}
	return m.authed, nil
}

// MarketsOverview delegates to the current client.
func (m *Manager) MarketsOverview(ctx context.Context) ([]domain.ExchangeMarket, error) {
	return m.current().MarketsOverview(ctx)
}

// MarketDetails delegates to the current client.
func (m *Manager) MarketDetails(ctx context.Context, pair domain.CurrencyPair) (domain.MarketDetails, error) {
	return m.current().MarketDetails(ctx, pair)
}

// BalancesFor delegates to the authenticated client.
func (m *Manager) BalancesFor(ctx context.Context, pair domain.CurrencyPair) (domain.PairBalances, error) {
	authed, err := m.account()
	if err != nil {
		return domain.PairBalances{}, err
	}
	return authed.BalancesFor(ctx, pair)
}

// AllBalances delegates to the authenticated client.
func (m *Manager) AllBalances(ctx context.Context) ([]domain.Balance, error) {
	authed, err := m.account()
	if err != nil {
		return nil, err
	}
	return authed.AllBalances(ctx)
}

// AllOrders delegates to the authenticated client.
func (m *Manager) AllOrders(ctx context.Context) ([]domain.PendingOrder, error) {
	authed, err := m.account()
	if err != nil {
		return nil, err
	}
	return authed.AllOrders(ctx)
}

// OrdersFor delegates to the authenticated client.
func (m *Manager) OrdersFor(ctx context.Context, pair domain.CurrencyPair) ([]domain.PendingOrder, error) {
	authed, err := m.account()
	if err != nil {
		return nil, err
	}
	return authed.OrdersFor(ctx, pair)
}

// SubmitOrder submits a buy or sell order on the authenticated client.
func (m *Manager) SubmitOrder(ctx context.Context, pair domain.CurrencyPair, action domain.Action, quantity, price float64) error {
	authed, err := m.account()
	if err != nil {
		return err
	}
	if action == domain.Buy {
		return authed.Buy(ctx, pair, quantity, price)
	}
	return authed.Sell(ctx, pair, quantity, price)
}

// Cancel cancels a pending order on the authenticated client.
func (m *Manager) Cancel(ctx context.Context, id uuid.UUID) error {
	authed, err := m.account()
	if err != nil {
		return err
	}
	return authed.Cancel(ctx, id)
}
