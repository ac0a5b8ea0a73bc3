package token

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
)

const (
	Name     = "TomatoCoin"
	Symbol   = "TOM"
	Decimals = 18

	// TaxRateBps is skimmed from every transfer while tax is enabled.
	TaxRateBps = 200
)

// SupplyCap is the hard ceiling on total supply; ReservedAllocation is the
// tenth of it minted straight to the treasury at creation, counted against
// the cap.
var (
	SupplyCap          = chain.Units(500_000)
	ReservedAllocation = chain.Units(50_000)
)

// Ledger is the capped, mintable, optionally-taxed TOM balance sheet. The
// minter capability is granted once at wiring time to the sale controller;
// the owner keeps the administrative toggles.
type Ledger struct {
	mu          sync.RWMutex
	owner       string
	minter      string
	treasury    string
	taxEnabled  bool
	totalSupply *uint256.Int
	balances    map[string]*uint256.Int
	allowances  map[string]map[string]*uint256.Int
	events      *events.Log
	log         *logrus.Entry
}

// NewLedger creates the ledger with the reserved allocation already minted
// to the treasury account. The owner starts out holding the minter
// capability until SetMinter hands it to the sale controller.
func NewLedger(owner, treasury string, bus *events.Bus, logger *logrus.Logger) *Ledger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	l := &Ledger{
		owner:       owner,
		minter:      owner,
		treasury:    treasury,
		totalSupply: ReservedAllocation.Clone(),
		balances:    make(map[string]*uint256.Int),
		allowances:  make(map[string]map[string]*uint256.Int),
		events:      events.NewLog("token", bus),
		log:         logger.WithField("component", "token"),
	}
	l.balances[treasury] = ReservedAllocation.Clone()

	l.log.WithFields(logrus.Fields{
		"owner":    owner,
		"treasury": treasury,
		"reserved": ReservedAllocation.Dec(),
	}).Info("token ledger created")
	return l
}

// Events returns everything the ledger has emitted.
func (l *Ledger) Events() []events.Event {
	return l.events.Events()
}

func (l *Ledger) balanceLocked(addr string) *uint256.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	return new(uint256.Int)
}
