package services

import (
	"context"
	"log"
	"sync"
	"time"

	"pulse-markets/internal/blockchain"

	"github.com/shopspring/decimal"
)

// Session tracks one signed-in wallet. StartedAt slides forward on every
// authenticated request, so the timeout window always measures idle time.
type Session struct {
	WalletAddress    string          `json:"wallet_address"`
	StartedAt        time.Time       `json:"started_at"`
	TokenBalance     decimal.Decimal `json:"token_balance"`
	BalanceUpdatedAt time.Time       `json:"balance_updated_at"`
}

// SessionManager owns the in-memory session table, the expiry sweep and the
// balance poll. Polling only covers active sessions and stops with Stop().
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	solanaClient    *blockchain.SolanaClient
	timeout         time.Duration
	sweepInterval   time.Duration
	balanceInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(solanaClient *blockchain.SolanaClient, timeout, sweepInterval, balanceInterval time.Duration) *SessionManager {
	return &SessionManager{
		sessions:        make(map[string]*Session),
		solanaClient:    solanaClient,
		timeout:         timeout,
		sweepInterval:   sweepInterval,
		balanceInterval: balanceInterval,
		stop:            make(chan struct{}),
	}
}

// Start begins the expiry sweep and balance poll loops
func (m *SessionManager) Start() {
	go m.sweepLoop()
	go m.balanceLoop()
}

// Stop tears down both loops
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

// Begin opens (or reopens) a session for a wallet and fetches its balance
func (m *SessionManager) Begin(walletAddress string) *Session {
	session := &Session{
		WalletAddress: walletAddress,
		StartedAt:     time.Now(),
		TokenBalance:  decimal.Zero,
	}

	m.mu.Lock()
	m.sessions[walletAddress] = session
	m.mu.Unlock()

	m.refreshBalance(walletAddress)
	return m.snapshot(walletAddress)
}

// Touch slides the session window. Returns false when there is no live
// session for the wallet — the caller must treat that as logged out.
func (m *SessionManager) Touch(walletAddress string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[walletAddress]
	if !ok {
		return false
	}
	if time.Since(session.StartedAt) > m.timeout {
		delete(m.sessions, walletAddress)
		return false
	}

	session.StartedAt = time.Now()
	return true
}

// End removes a session immediately; its balance polling stops with it
func (m *SessionManager) End(walletAddress string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, walletAddress)
}

// Get returns a copy of the session and its remaining lifetime
func (m *SessionManager) Get(walletAddress string) (*Session, time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[walletAddress]
	if !ok {
		return nil, 0, false
	}

	remaining := m.timeout - time.Since(session.StartedAt)
	if remaining <= 0 {
		delete(m.sessions, walletAddress)
		return nil, 0, false
	}

	copied := *session
	return &copied, remaining, true
}

// ActiveCount returns the number of live sessions
func (m *SessionManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) sweepLoop() {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.expireStale()
		}
	}
}

func (m *SessionManager) expireStale() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for address, session := range m.sessions {
		if time.Since(session.StartedAt) > m.timeout {
			log.Printf("Session expired for %s", address)
			delete(m.sessions, address)
		}
	}
}

func (m *SessionManager) balanceLoop() {
	ticker := time.NewTicker(m.balanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			for _, address := range m.activeAddresses() {
				m.refreshBalance(address)
			}
		}
	}
}

func (m *SessionManager) activeAddresses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	addresses := make([]string, 0, len(m.sessions))
	for address := range m.sessions {
		addresses = append(addresses, address)
	}
	return addresses
}

// refreshBalance polls the chain for the wallet's token balance. Failures
// leave the last known balance in place.
func (m *SessionManager) refreshBalance(walletAddress string) {
	if m.solanaClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	balance, err := m.solanaClient.GetTokenBalance(ctx, walletAddress)
	if err != nil {
		log.Printf("Warning: could not refresh balance for %s: %v", walletAddress, err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[walletAddress]; ok {
		session.TokenBalance = balance
		session.BalanceUpdatedAt = time.Now()
	}
}

func (m *SessionManager) snapshot(walletAddress string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[walletAddress]; ok {
		copied := *session
		return &copied
	}
	return nil
}
