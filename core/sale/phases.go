package sale

import (
	"github.com/holiman/uint256"

	"github.com/noahlitvin/TomatoCoin/core/chain"
)

// Phase is the sale's forward-only state: Seed → General → Open.
type Phase int

const (
	PhaseSeed Phase = iota
	PhaseGeneral
	PhaseOpen
)

func (p Phase) String() string {
	switch p {
	case PhaseSeed:
		return "seed"
	case PhaseGeneral:
		return "general"
	case PhaseOpen:
		return "open"
	default:
		return "unknown"
	}
}

var (
	// GlobalCap hard-stops total raised across all phases.
	GlobalCap = chain.Units(30_000)

	// RedemptionRatio is the TOM minted per native unit contributed.
	RedemptionRatio = uint256.NewInt(5)

	seedAccountCap    = chain.Units(1_500)
	seedPhaseCap      = chain.Units(15_000)
	generalAccountCap = chain.Units(1_000)
)

// phaseRules drives Contribute's phase-dependent checks; a nil cap means no
// limit. Keeping the rule set as data lets each phase be tested on its own.
type phaseRules struct {
	requireWhitelist bool
	accountCap       *uint256.Int
	phaseCap         *uint256.Int
}

var rulesByPhase = map[Phase]phaseRules{
	PhaseSeed:    {requireWhitelist: true, accountCap: seedAccountCap, phaseCap: seedPhaseCap},
	PhaseGeneral: {accountCap: generalAccountCap},
	PhaseOpen:    {},
}
