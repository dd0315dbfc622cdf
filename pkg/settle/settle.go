// Package settle verifies that the ledger's per-round settlement is
// arithmetically consistent with the observed round outcome. It recomputes
// every player's award and the house's share from the score report, then
// compares against the balances the ledger actually holds. A mismatch is a
// failed verification, never a warning.
package settle

import (
	"context"
	"fmt"

	"blackjack-observer/pkg/ledger"
	"blackjack-observer/pkg/table"
)

// Config parameterizes the round economics. All values are exact integer
// ratios; no floating point touches a balance.
type Config struct {
	// Bet is the round's stake per player, in minor units
	Bet int64

	// RakePercent is the house's share of each settled player's swing
	// magnitude: the bank moves by -award * RakePercent / 100
	RakePercent int64

	// BonusPercent scales a winning award when the player's score is
	// exactly 21: award = bet * BonusPercent / 100
	BonusPercent int64
}

// DefaultConfig returns the reference-scenario economics
func DefaultConfig() Config {
	return Config{
		Bet:          10_000_000,
		RakePercent:  90,
		BonusPercent: 125,
	}
}

// Stake describes one player entering verification: their seat and their
// chain wallet balance captured before the round started
type Stake struct {
	Seat             int
	PreWalletBalance int64
}

// Result carries the verifier's full reconstruction of the round. Pass is
// false if any check failed; Diagnostics then carries every failed check
// with its expected and observed operands.
type Result struct {
	// ExpectedAwards maps seat to the signed award the ledger should have
	// applied for that player
	ExpectedAwards map[int]int64

	// ExpectedBankDelta is the total signed movement the bank balance
	// should have seen
	ExpectedBankDelta int64

	// ExpectedBankBalance is preBankBalance + ExpectedBankDelta
	ExpectedBankBalance int64

	// ObservedBankBalance is the bank balance the ledger reported after
	// the round
	ObservedBankBalance int64

	// ObservedUserBalances maps seat to the post-round betting balance
	ObservedUserBalances map[int]int64

	Pass        bool
	Diagnostics []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Pass = false
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

// Verifier checks settled rounds against a ledger
type Verifier struct {
	cfg Config
	q   ledger.Querier
}

// NewVerifier returns a verifier using the given economics
func NewVerifier(cfg Config, q ledger.Querier) *Verifier {
	return &Verifier{cfg: cfg, q: q}
}

// ExpectedAward returns the signed award for one score entry. The report's
// won flag is stored from the dealer's perspective, so the player wins when
// the entry reads false.
func (v *Verifier) ExpectedAward(score *table.PlayerScore) int64 {
	if score.DealerWon() {
		return -v.cfg.Bet
	}

	award := v.cfg.Bet
	if score.Score == 21 {
		award = award * v.cfg.BonusPercent / 100
	}

	return award
}

// Verify reconstructs the settlement of a completed round and compares it
// against the ledger's balances. It must only be called once the round has
// fully resolved; against an in-flight round the score report is stale or
// partial and the result is meaningless.
//
// Query failures are returned as errors. Semantic mismatches set
// Result.Pass to false with diagnostics; callers must treat that as an
// assertion failure.
func (v *Verifier) Verify(ctx context.Context, preBankBalance int64, stakes []Stake, report *table.ScoreReport, post *table.Table) (*Result, error) {
	if report == nil {
		return nil, fmt.Errorf("no score report to verify")
	}

	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("post-round snapshot is invalid: %w", err)
	}

	result := &Result{
		ExpectedAwards:       make(map[int]int64, len(stakes)),
		ObservedUserBalances: make(map[int]int64, len(stakes)),
		Pass:                 true,
	}

	var bankDelta int64
	for _, stake := range stakes {
		if stake.Seat < 0 || stake.Seat >= table.NumSeats {
			return nil, fmt.Errorf("stake references seat %d, want 0 through %d", stake.Seat, table.NumSeats-1)
		}

		address := post.Players[stake.Seat].Address
		if address == "" {
			result.fail("seat %d: no player in post-round snapshot", stake.Seat)
			continue
		}

		score, ok := report.ScoreFor(stake.Seat)
		if !ok {
			result.fail("seat %d: player has no score", stake.Seat)
			continue
		}

		award := v.ExpectedAward(score)
		result.ExpectedAwards[stake.Seat] = award
		bankDelta -= award * v.cfg.RakePercent / 100

		// the round must have fully consumed the betting balance
		userBalance, err := v.q.GetUserBalance(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("seat %d: could not query user balance: %w", stake.Seat, err)
		}

		result.ObservedUserBalances[stake.Seat] = userBalance
		if userBalance != 0 {
			result.fail("seat %d: betting balance after settlement is %d, want 0", stake.Seat, userBalance)
		}

		if award > 0 {
			walletBalance, err := v.q.GetWalletBalance(ctx, address)
			if err != nil {
				return nil, fmt.Errorf("seat %d: could not query wallet balance: %w", stake.Seat, err)
			}

			if walletBalance <= stake.PreWalletBalance {
				result.fail("seat %d: wallet balance %d should exceed pre-round balance %d after an award of %d",
					stake.Seat, walletBalance, stake.PreWalletBalance, award)
			}
		}
	}

	result.ExpectedBankDelta = bankDelta
	result.ExpectedBankBalance = preBankBalance + bankDelta

	bankBalance, err := v.q.GetBankBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not query bank balance: %w", err)
	}

	result.ObservedBankBalance = bankBalance
	if bankBalance != result.ExpectedBankBalance {
		result.fail("bank balance is %d, want %d (pre %d, delta %d)",
			bankBalance, result.ExpectedBankBalance, preBankBalance, bankDelta)
	}

	return result, nil
}
