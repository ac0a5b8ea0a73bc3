// Package pool implements the constant-product liquidity pool pairing the
// native asset with the utility token. Providers stake native value plus a
// pre-approved token allowance and receive liquidity shares; traders swap
// either asset against the reserves under a fee and a slippage ceiling.
package pool

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
	"github.com/noahlitvin/TomatoCoin/core/lpt"
	"github.com/noahlitvin/TomatoCoin/core/token"
)

const (
	// FeeBps is the swap fee retained by the reserves, in basis points.
	FeeBps = 100

	// MaxSlippagePct caps how far below the spot quote a swap may fill.
	MaxSlippagePct = 10
)

var (
	ErrInsufficientAllowance = errors.New("token allowance too low for requested stake")
	ErrNoShares              = errors.New("caller holds no liquidity shares")
	ErrSlippageExceeded      = errors.New("swap output below the slippage floor")
	ErrInsufficientLiquidity = errors.New("pool has no liquidity")
)

type Pool struct {
	mu   sync.RWMutex
	addr string // account holding the pooled assets

	reserveNative *uint256.Int
	reserveToken  *uint256.Int

	token  *token.Ledger
	shares *lpt.ShareLedger
	native *chain.NativeLedger
	events *events.Log
	log    *logrus.Entry
}

// NewPool wires the pool against its three ledgers. The share ledger's
// controller capability must be bound to `addr` separately at wiring time.
func NewPool(addr string, tok *token.Ledger, shares *lpt.ShareLedger, native *chain.NativeLedger, bus *events.Bus, logger *logrus.Logger) *Pool {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pool{
		addr:          addr,
		reserveNative: new(uint256.Int),
		reserveToken:  new(uint256.Int),
		token:         tok,
		shares:        shares,
		native:        native,
		events:        events.NewLog("pool", bus),
		log:           logger.WithField("component", "pool"),
	}
}

func (p *Pool) Address() string {
	return p.addr
}

// Reserves returns the current native and token reserves.
func (p *Pool) Reserves() (*uint256.Int, *uint256.Int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reserveNative.Clone(), p.reserveToken.Clone()
}

// EthBalance returns the native reserve.
func (p *Pool) EthBalance() *uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reserveNative.Clone()
}

// TomBalance returns the token reserve.
func (p *Pool) TomBalance() *uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reserveToken.Clone()
}

// TotalShares returns the outstanding liquidity share supply.
func (p *Pool) TotalShares() *uint256.Int {
	return p.shares.TotalShares()
}

// Events returns everything the pool has emitted.
func (p *Pool) Events() []events.Event {
	return p.events.Events()
}

// RestoreState overwrites the reserves. Used only when loading from
// persistence; holdings live in the token, share, and native ledgers.
func (p *Pool) RestoreState(reserveNative, reserveToken *uint256.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reserveNative = reserveNative.Clone()
	p.reserveToken = reserveToken.Clone()
}
