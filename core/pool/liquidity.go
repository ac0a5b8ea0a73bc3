package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
)

// Stake deposits the attached native amount together with tokens drawn from
// the caller's allowance to the pool.
//
// The first stake sets the price: the caller's entire token allowance is
// pulled and shares are issued one-for-one with the native amount. Later
// stakes must match the current reserve ratio; the token requirement is
// rounded up and shares are issued pro rata against the native reserve.
func (p *Pool) Stake(caller string, nativeAmount *uint256.Int) error {
	if !chain.ValidAccount(caller) {
		return chain.ErrInvalidAccount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if nativeAmount == nil || nativeAmount.IsZero() {
		return chain.ErrZeroAmount
	}

	allowance := p.token.Allowance(caller, p.addr)

	var tokenPull, sharesOut *uint256.Int
	if p.shares.TotalShares().IsZero() {
		if allowance.IsZero() {
			return fmt.Errorf("initial stake by %s: %w", caller, ErrInsufficientAllowance)
		}
		tokenPull = allowance
		sharesOut = nativeAmount.Clone()
	} else {
		required, err := chain.MulDivCeil(nativeAmount, p.reserveToken, p.reserveNative)
		if err != nil {
			return fmt.Errorf("computing stake requirement: %w", err)
		}
		if allowance.Lt(required) {
			return fmt.Errorf("stake by %s needs %s tokens approved: %w", caller, required.Dec(), ErrInsufficientAllowance)
		}
		tokenPull = required
		sharesOut, err = chain.MulDiv(nativeAmount, p.shares.TotalShares(), p.reserveNative)
		if err != nil {
			return fmt.Errorf("computing share issue: %w", err)
		}
		if sharesOut.IsZero() {
			return fmt.Errorf("stake by %s too small to mint shares: %w", caller, chain.ErrZeroAmount)
		}
	}

	if err := p.native.Transfer(caller, p.addr, nativeAmount); err != nil {
		return fmt.Errorf("depositing native stake: %w", err)
	}

	heldBefore := p.token.BalanceOf(p.addr)
	if err := p.token.TransferFrom(caller, p.addr, p.addr, tokenPull); err != nil {
		// Undo the native leg so a failed pull leaves the caller whole.
		if refundErr := p.native.Transfer(p.addr, caller, nativeAmount); refundErr != nil {
			p.log.WithError(refundErr).Error("refund after failed token pull")
		}
		return fmt.Errorf("pulling token stake: %w", err)
	}
	// Reserves track what actually arrived, which can be less than the
	// pull when the transfer tax is enabled.
	received, err := chain.Sub(p.token.BalanceOf(p.addr), heldBefore)
	if err != nil {
		return fmt.Errorf("measuring token deposit: %w", err)
	}

	if err := p.shares.Mint(p.addr, caller, sharesOut); err != nil {
		return fmt.Errorf("minting shares: %w", err)
	}

	p.reserveNative, err = chain.Add(p.reserveNative, nativeAmount)
	if err != nil {
		return fmt.Errorf("growing native reserve: %w", err)
	}
	p.reserveToken, err = chain.Add(p.reserveToken, received)
	if err != nil {
		return fmt.Errorf("growing token reserve: %w", err)
	}

	p.events.Emit(events.Event{
		Type:   events.EventStaked,
		From:   caller,
		Amount: nativeAmount.Dec(),
		Metadata: map[string]interface{}{
			"tokens": received.Dec(),
			"shares": sharesOut.Dec(),
		},
	})
	p.log.WithFields(logrus.Fields{
		"caller": caller,
		"native": nativeAmount.Dec(),
		"tokens": received.Dec(),
		"shares": sharesOut.Dec(),
	}).Info("liquidity staked")
	return nil
}

// Withdraw burns the caller's entire share balance and pays out the
// proportional slice of both reserves, accrued fees included.
func (p *Pool) Withdraw(caller string) error {
	if !chain.ValidAccount(caller) {
		return chain.ErrInvalidAccount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	held := p.shares.SharesOf(caller)
	if held.IsZero() {
		return fmt.Errorf("withdraw by %s: %w", caller, ErrNoShares)
	}
	total := p.shares.TotalShares()

	nativeOut, err := chain.MulDiv(held, p.reserveNative, total)
	if err != nil {
		return fmt.Errorf("computing native payout: %w", err)
	}
	tokenOut, err := chain.MulDiv(held, p.reserveToken, total)
	if err != nil {
		return fmt.Errorf("computing token payout: %w", err)
	}

	if err := p.shares.Burn(p.addr, caller, held); err != nil {
		return fmt.Errorf("burning shares: %w", err)
	}

	if err := p.native.Transfer(p.addr, caller, nativeOut); err != nil {
		return fmt.Errorf("paying native withdrawal: %w", err)
	}
	if !tokenOut.IsZero() {
		if err := p.token.Transfer(p.addr, caller, tokenOut); err != nil {
			return fmt.Errorf("paying token withdrawal: %w", err)
		}
	}

	p.reserveNative = new(uint256.Int).Sub(p.reserveNative, nativeOut)
	p.reserveToken = new(uint256.Int).Sub(p.reserveToken, tokenOut)

	p.events.Emit(events.Event{
		Type:   events.EventWithdrawn,
		To:     caller,
		Amount: nativeOut.Dec(),
		Metadata: map[string]interface{}{
			"tokens": tokenOut.Dec(),
			"shares": held.Dec(),
		},
	})
	p.log.WithFields(logrus.Fields{
		"caller": caller,
		"native": nativeOut.Dec(),
		"tokens": tokenOut.Dec(),
	}).Info("liquidity withdrawn")
	return nil
}
