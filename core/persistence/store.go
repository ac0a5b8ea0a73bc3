// Package persistence saves and restores the full ledger state through a
// bbolt database, one bucket per component, so a restarted process resumes
// where it left off.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/lpt"
	"github.com/noahlitvin/TomatoCoin/core/pool"
	"github.com/noahlitvin/TomatoCoin/core/sale"
	"github.com/noahlitvin/TomatoCoin/core/token"
)

var stateKey = []byte("state")

var buckets = []string{"native", "token", "sale", "lpt", "pool"}

type Store struct {
	db  *bolt.DB
	log *logrus.Entry
}

// Open opens or creates the database at path and ensures every component
// bucket exists.
func Open(path string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, log: logger.WithField("component", "persistence")}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Amounts travel as decimal strings so snapshots stay readable in the
// database and survive format changes in the integer type.

type nativeSnapshot struct {
	Balances map[string]string `json:"balances"`
}

type tokenSnapshot struct {
	Balances    map[string]string `json:"balances"`
	TotalSupply string            `json:"total_supply"`
	Minter      string            `json:"minter"`
	TaxEnabled  bool              `json:"tax_enabled"`
}

type saleSnapshot struct {
	Phase         int               `json:"phase"`
	Paused        bool              `json:"paused"`
	TotalRaised   string            `json:"total_raised"`
	PhaseRaised   string            `json:"phase_raised"`
	Contributions map[string]string `json:"contributions"`
	Investors     []string          `json:"investors"`
}

type shareSnapshot struct {
	Shares      map[string]string `json:"shares"`
	TotalShares string            `json:"total_shares"`
	Controller  string            `json:"controller"`
}

type poolSnapshot struct {
	ReserveNative string `json:"reserve_native"`
	ReserveToken  string `json:"reserve_token"`
}

// Save writes a consistent snapshot of every component. Callers must not
// run operations concurrently with a save.
func (s *Store) Save(native *chain.NativeLedger, tok *token.Ledger, sc *sale.Controller, shares *lpt.ShareLedger, p *pool.Pool) error {
	rNative, rToken := p.Reserves()
	snapshots := map[string]interface{}{
		"native": nativeSnapshot{Balances: encodeAmounts(native.AllBalances())},
		"token": tokenSnapshot{
			Balances:    encodeAmounts(tok.AllBalances()),
			TotalSupply: tok.TotalSupply().Dec(),
			Minter:      tok.Minter(),
			TaxEnabled:  tok.TaxEnabled(),
		},
		"sale": saleSnapshot{
			Phase:         int(sc.Phase()),
			Paused:        sc.IsPaused(),
			TotalRaised:   sc.TotalRaised().Dec(),
			PhaseRaised:   sc.PhaseRaised().Dec(),
			Contributions: encodeAmounts(sc.Contributions()),
			Investors:     sc.PrivateInvestors(),
		},
		"lpt": shareSnapshot{
			Shares:      encodeAmounts(shares.AllShares()),
			TotalShares: shares.TotalShares().Dec(),
			Controller:  shares.Controller(),
		},
		"pool": poolSnapshot{
			ReserveNative: rNative.Dec(),
			ReserveToken:  rToken.Dec(),
		},
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		for bucket, snap := range snapshots {
			data, err := json.Marshal(snap)
			if err != nil {
				return fmt.Errorf("encoding %s snapshot: %w", bucket, err)
			}
			if err := tx.Bucket([]byte(bucket)).Put(stateKey, data); err != nil {
				return fmt.Errorf("writing %s snapshot: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("state saved")
	return nil
}

// Load restores every component from the last saved snapshot. Components
// with no snapshot yet are left untouched.
func (s *Store) Load(native *chain.NativeLedger, tok *token.Ledger, sc *sale.Controller, shares *lpt.ShareLedger, p *pool.Pool) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket([]byte("native")).Get(stateKey); data != nil {
			var snap nativeSnapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("decoding native snapshot: %w", err)
			}
			balances, err := decodeAmounts(snap.Balances)
			if err != nil {
				return err
			}
			for addr, b := range balances {
				native.SetBalance(addr, b)
			}
		}

		if data := tx.Bucket([]byte("token")).Get(stateKey); data != nil {
			var snap tokenSnapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("decoding token snapshot: %w", err)
			}
			balances, err := decodeAmounts(snap.Balances)
			if err != nil {
				return err
			}
			supply, err := decodeAmount(snap.TotalSupply)
			if err != nil {
				return err
			}
			tok.RestoreState(balances, supply, snap.Minter, snap.TaxEnabled)
		}

		if data := tx.Bucket([]byte("sale")).Get(stateKey); data != nil {
			var snap saleSnapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("decoding sale snapshot: %w", err)
			}
			contributions, err := decodeAmounts(snap.Contributions)
			if err != nil {
				return err
			}
			totalRaised, err := decodeAmount(snap.TotalRaised)
			if err != nil {
				return err
			}
			phaseRaised, err := decodeAmount(snap.PhaseRaised)
			if err != nil {
				return err
			}
			sc.RestoreState(sale.Phase(snap.Phase), snap.Paused, totalRaised, phaseRaised, contributions, snap.Investors)
		}

		if data := tx.Bucket([]byte("lpt")).Get(stateKey); data != nil {
			var snap shareSnapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("decoding share snapshot: %w", err)
			}
			holdings, err := decodeAmounts(snap.Shares)
			if err != nil {
				return err
			}
			total, err := decodeAmount(snap.TotalShares)
			if err != nil {
				return err
			}
			shares.RestoreState(holdings, total, snap.Controller)
		}

		if data := tx.Bucket([]byte("pool")).Get(stateKey); data != nil {
			var snap poolSnapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("decoding pool snapshot: %w", err)
			}
			rNative, err := decodeAmount(snap.ReserveNative)
			if err != nil {
				return err
			}
			rToken, err := decodeAmount(snap.ReserveToken)
			if err != nil {
				return err
			}
			p.RestoreState(rNative, rToken)
		}
		return nil
	})
}

func encodeAmounts(in map[string]*uint256.Int) map[string]string {
	out := make(map[string]string, len(in))
	for addr, b := range in {
		out[addr] = b.Dec()
	}
	return out
}

func decodeAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("decoding amount %q: %w", s, err)
	}
	return v, nil
}

func decodeAmounts(in map[string]string) (map[string]*uint256.Int, error) {
	out := make(map[string]*uint256.Int, len(in))
	for addr, s := range in {
		v, err := decodeAmount(s)
		if err != nil {
			return nil, err
		}
		out[addr] = v
	}
	return out, nil
}
