package deck

import (
	"fmt"
	"strings"
)

// Hand is a dealt blackjack hand as reported by the ledger. ReportedTotal is
// the total the ledger computed for the hand; the ledger is authoritative,
// Score exists as a display-layer cross-check.
type Hand struct {
	Cards         []Card `json:"cards"`
	ReportedTotal int    `json:"total_value"`
}

// Score computes the blackjack total for a set of cards. Aces count as 1,
// and a single ace is promoted to 11 when the base total allows it. A second
// promotion can never help: once one ace counts as 11 the total is already
// past 11, so promoting another would always bust.
func Score(cards []Card) int {
	base := 0
	hasAce := false
	for _, c := range cards {
		base += c.PointValue()
		if c.IsAce() {
			hasAce = true
		}
	}

	if base <= 11 && hasAce {
		return base + 10
	}

	return base
}

// Score returns the locally computed total for the hand
func (h *Hand) Score() int {
	return Score(h.Cards)
}

// CheckReportedTotal compares the local score against the ledger-reported
// total. A mismatch is surfaced, never silently resolved; the ledger total
// remains the value to display.
func (h *Hand) CheckReportedTotal() error {
	if local := h.Score(); local != h.ReportedTotal {
		return fmt.Errorf("hand %s: local score %d disagrees with ledger total %d", h, local, h.ReportedTotal)
	}

	return nil
}

func (h *Hand) String() string {
	cards := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		cards[i] = c.String()
	}

	return strings.Join(cards, ",")
}
