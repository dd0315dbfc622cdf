package table

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PlayerScore is one seat's result in the just-finished round.
//
// Won is recorded from the dealer's perspective: Won == true means the
// dealer beat this player. The flag is preserved exactly as the ledger
// stores it; use DealerWon to read it without getting the sign backwards.
type PlayerScore struct {
	Address string `json:"address"`
	Won     bool   `json:"won"`
	Score   int    `json:"score"`
	Reward  string `json:"reward"`
}

// DealerWon returns true if the dealer beat this player
func (s PlayerScore) DealerWon() bool {
	return s.Won
}

// PlayerWon returns true if this player beat the dealer
func (s PlayerScore) PlayerWon() bool {
	return !s.Won
}

// RewardAmount parses the ledger's string-encoded reward into minor units
func (s PlayerScore) RewardAmount() (int64, error) {
	amount, err := strconv.ParseInt(s.Reward, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse reward %q: %w", s.Reward, err)
	}

	return amount, nil
}

// ScoreReport is the per-round settlement report. Players is indexed by
// seat; a nil entry means the seat had no active hand in the round. The
// report is meaningful only until the next round's report supersedes it.
type ScoreReport struct {
	Players [NumSeats]*PlayerScore `json:"players"`
	Dealer  PlayerScore            `json:"dealer"`
}

// ScoreFor returns the score entry for a seat, or false if the seat did not
// play the round
func (r *ScoreReport) ScoreFor(seat int) (*PlayerScore, bool) {
	if seat < 0 || seat >= NumSeats {
		return nil, false
	}

	if r.Players[seat] == nil {
		return nil, false
	}

	return r.Players[seat], true
}

// DecodeScoreReport parses a score report from its wire JSON
func DecodeScoreReport(data []byte) (*ScoreReport, error) {
	var r ScoreReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("could not decode score report: %w", err)
	}

	return &r, nil
}
