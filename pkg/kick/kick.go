// Package kick computes which seats may be forcibly removed from the table.
// A seat holding the turn gets a fixed grace period; once it expires, any
// other seated player may ask the ledger to kick the stalled actor.
package kick

import (
	"time"

	"blackjack-observer/pkg/table"
)

// GraceSeconds is the window during which the acting seat is immune to
// being kicked
const GraceSeconds int64 = 300

// SeatStatus reports kick eligibility for one seat
type SeatStatus struct {
	Eligible  bool  `json:"eligible"`
	Remaining int64 `json:"remaining"`
}

// Status returns the kick status for every seat at the given instant.
// Only the seat currently holding the turn can ever be kicked, so every
// other seat reports zero remaining and not eligible. mySeat is the local
// player's seat (turn.NoSeat when unseated): a player may never kick
// themselves.
func Status(t *table.Table, mySeat int, now time.Time) [table.NumSeats]SeatStatus {
	var statuses [table.NumSeats]SeatStatus

	pt, ok := t.State.PlayerTurn()
	if !ok {
		return statuses
	}

	elapsed := now.Unix() - pt.TurnStartTime
	remaining := GraceSeconds - elapsed
	if remaining < 0 {
		remaining = 0
	}

	statuses[pt.Seat] = SeatStatus{
		Eligible:  remaining == 0 && mySeat != pt.Seat,
		Remaining: remaining,
	}

	return statuses
}
