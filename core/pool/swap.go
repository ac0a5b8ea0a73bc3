package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/noahlitvin/TomatoCoin/core/chain"
	"github.com/noahlitvin/TomatoCoin/core/events"
	"github.com/noahlitvin/TomatoCoin/core/token"
)

// swapOutput prices `in` units of the input asset against the (rIn, rOut)
// reserves. The fee comes off the input before the constant-product curve
// is applied. The retained-reserve term rounds up so the output can never
// overdraw the curve.
func swapOutput(in, rIn, rOut *uint256.Int) (*uint256.Int, error) {
	if rIn.IsZero() || rOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}

	effIn, err := chain.ApplyBps(in, chain.BpsDenominator-FeeBps)
	if err != nil {
		return nil, err
	}
	denom, err := chain.Add(rIn, effIn)
	if err != nil {
		return nil, err
	}
	keep, err := chain.MulDivCeil(rIn, rOut, denom)
	if err != nil {
		return nil, err
	}
	return chain.Sub(rOut, keep)
}

// checkSlippage rejects a fill that lands more than MaxSlippagePct below
// the spot quote for the same input.
func checkSlippage(in, rIn, rOut, out *uint256.Int) error {
	spot, err := chain.MulDiv(in, rOut, rIn)
	if err != nil {
		return err
	}
	floor, err := chain.MulDiv(spot, uint256.NewInt(100-MaxSlippagePct), uint256.NewInt(100))
	if err != nil {
		return err
	}
	if out.IsZero() || out.Lt(floor) {
		return fmt.Errorf("fill %s below floor %s: %w", out.Dec(), floor.Dec(), ErrSlippageExceeded)
	}
	return nil
}

// arrivingAfterTax returns how much of a token pull actually lands in pool
// custody once the transfer tax has been skimmed.
func (p *Pool) arrivingAfterTax(amount *uint256.Int) (*uint256.Int, error) {
	if !p.token.TaxEnabled() {
		return amount.Clone(), nil
	}
	tax, err := chain.ApplyBps(amount, token.TaxRateBps)
	if err != nil {
		return nil, err
	}
	return chain.Sub(amount, tax)
}

// EstimateTom quotes the token output for a native input without trading.
// The quote carries the fee but not the slippage guard, so callers can see
// the fill a guarded swap would have produced.
func (p *Pool) EstimateTom(nativeIn *uint256.Int) (*uint256.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if nativeIn == nil || nativeIn.IsZero() {
		return nil, chain.ErrZeroAmount
	}
	return swapOutput(nativeIn, p.reserveNative, p.reserveToken)
}

// EstimateEth quotes the native output for a token input without trading.
func (p *Pool) EstimateEth(tomIn *uint256.Int) (*uint256.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if tomIn == nil || tomIn.IsZero() {
		return nil, chain.ErrZeroAmount
	}
	arriving, err := p.arrivingAfterTax(tomIn)
	if err != nil {
		return nil, err
	}
	return swapOutput(arriving, p.reserveToken, p.reserveNative)
}

// ExchangeForTom swaps the attached native amount for tokens.
func (p *Pool) ExchangeForTom(caller string, nativeIn *uint256.Int) error {
	if !chain.ValidAccount(caller) {
		return chain.ErrInvalidAccount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if nativeIn == nil || nativeIn.IsZero() {
		return chain.ErrZeroAmount
	}

	out, err := swapOutput(nativeIn, p.reserveNative, p.reserveToken)
	if err != nil {
		return fmt.Errorf("swap by %s: %w", caller, err)
	}
	if err := checkSlippage(nativeIn, p.reserveNative, p.reserveToken, out); err != nil {
		return fmt.Errorf("swap by %s: %w", caller, err)
	}

	if err := p.native.Transfer(caller, p.addr, nativeIn); err != nil {
		return fmt.Errorf("depositing swap input: %w", err)
	}
	if err := p.token.Transfer(p.addr, caller, out); err != nil {
		if refundErr := p.native.Transfer(p.addr, caller, nativeIn); refundErr != nil {
			p.log.WithError(refundErr).Error("refund after failed token payout")
		}
		return fmt.Errorf("paying swap output: %w", err)
	}

	p.reserveNative, err = chain.Add(p.reserveNative, nativeIn)
	if err != nil {
		return fmt.Errorf("growing native reserve: %w", err)
	}
	p.reserveToken = new(uint256.Int).Sub(p.reserveToken, out)

	p.events.Emit(events.Event{
		Type:   events.EventSwappedEthForTom,
		From:   caller,
		Amount: nativeIn.Dec(),
		Metadata: map[string]interface{}{
			"tokens_out": out.Dec(),
		},
	})
	p.log.WithFields(logrus.Fields{
		"caller":     caller,
		"native_in":  nativeIn.Dec(),
		"tokens_out": out.Dec(),
	}).Info("swapped native for tokens")
	return nil
}

// ExchangeForEth swaps tokens drawn from the caller's allowance for native
// value. The payout is priced on what survives the transfer tax, not on the
// nominal input, so the reserve product cannot shrink while tax is on.
func (p *Pool) ExchangeForEth(caller string, tomIn *uint256.Int) error {
	if !chain.ValidAccount(caller) {
		return chain.ErrInvalidAccount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if tomIn == nil || tomIn.IsZero() {
		return chain.ErrZeroAmount
	}
	if p.token.Allowance(caller, p.addr).Lt(tomIn) {
		return fmt.Errorf("swap by %s: %w", caller, ErrInsufficientAllowance)
	}

	arriving, err := p.arrivingAfterTax(tomIn)
	if err != nil {
		return fmt.Errorf("swap by %s: %w", caller, err)
	}
	out, err := swapOutput(arriving, p.reserveToken, p.reserveNative)
	if err != nil {
		return fmt.Errorf("swap by %s: %w", caller, err)
	}
	if err := checkSlippage(arriving, p.reserveToken, p.reserveNative, out); err != nil {
		return fmt.Errorf("swap by %s: %w", caller, err)
	}

	heldBefore := p.token.BalanceOf(p.addr)
	if err := p.token.TransferFrom(caller, p.addr, p.addr, tomIn); err != nil {
		return fmt.Errorf("depositing swap input: %w", err)
	}
	received, err := chain.Sub(p.token.BalanceOf(p.addr), heldBefore)
	if err != nil {
		return fmt.Errorf("measuring swap input: %w", err)
	}

	if err := p.native.Transfer(p.addr, caller, out); err != nil {
		if refundErr := p.token.Transfer(p.addr, caller, received); refundErr != nil {
			p.log.WithError(refundErr).Error("refund after failed native payout")
		}
		return fmt.Errorf("paying swap output: %w", err)
	}

	p.reserveToken, err = chain.Add(p.reserveToken, received)
	if err != nil {
		return fmt.Errorf("growing token reserve: %w", err)
	}
	p.reserveNative = new(uint256.Int).Sub(p.reserveNative, out)

	p.events.Emit(events.Event{
		Type:   events.EventSwappedTomForEth,
		From:   caller,
		Amount: tomIn.Dec(),
		Metadata: map[string]interface{}{
			"native_out": out.Dec(),
		},
	})
	p.log.WithFields(logrus.Fields{
		"caller":     caller,
		"tokens_in":  tomIn.Dec(),
		"native_out": out.Dec(),
	}).Info("swapped tokens for native")
	return nil
}
