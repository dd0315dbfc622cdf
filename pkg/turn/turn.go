// Package turn derives whose turn it is and which actions are legal from a
// single table snapshot. The derivation is advisory: the ledger remains
// authoritative and will reject anything this package got wrong.
package turn

import (
	"blackjack-observer/pkg/table"
)

// display messages
const (
	MsgTakeASeat     = "take a seat"
	MsgDealerActing  = "dealer is acting"
	MsgObserving     = "seated players are playing, wait"
	MsgGetReady      = "get ready, you play soon"
	MsgWaitNextRound = "round in progress, wait for next round"
)

// NoSeat is the MySeat value when the identity occupies no seat
const NoSeat = -1

// State is the derived, UI-facing view of one snapshot for one identity.
// An empty Message means the previous message should be left as is.
type State struct {
	Message    string   `json:"message"`
	Actions    []Action `json:"actions"`
	MySeat     int      `json:"mySeat"`
	Seated     bool     `json:"seated"`
	MyTurn     bool     `json:"myTurn"`
	FirstRound bool     `json:"firstRound"`

	// AutoHold is set when the hand is already at 21 or busted: there is
	// nothing left to decide, the caller should issue a hold
	AutoHold bool `json:"autoHold"`
}

// Allows returns true if the action is legal in the derived state
func (s State) Allows(a Action) bool {
	for _, action := range s.Actions {
		if action == a {
			return true
		}
	}

	return false
}

// Derive computes the turn state for the given identity. scored reports
// whether the current score report already carries an entry for the
// identity's seat; it only affects the waiting message shown to a player who
// has finished acting this round.
//
// The branch order matters. In particular, a seat above the acting seat has
// not acted yet this round, and a seat below it already has: the contract
// advances the turn seat by seat in ascending order, so the ordering of seat
// numbers is the only visible "already acted" signal.
func Derive(t *table.Table, identity string, scored bool) State {
	state := State{MySeat: NoSeat}

	mySeat, seated := t.SeatOf(identity)
	if seated {
		state.MySeat = mySeat
		state.Seated = true
	}

	switch t.State.Phase() {
	case table.PhaseNoPlayers:
		state.Message = MsgTakeASeat
		return state

	case table.PhaseDealerTurn:
		state.Message = MsgDealerActing
		return state
	}

	pt, _ := t.State.PlayerTurn()

	if !seated {
		state.Message = MsgObserving
		return state
	}

	if mySeat != pt.Seat {
		if mySeat > pt.Seat {
			state.Message = MsgGetReady
		} else if !scored {
			state.Message = MsgWaitNextRound
		}

		return state
	}

	state.MyTurn = true

	if pt.IsFirst {
		state.FirstRound = true
		state.Actions = []Action{Bid, Stand}
		return state
	}

	me := t.Players[mySeat]
	if me.State == table.PlayerStateHold {
		// already held, waiting for the round to resolve
		return state
	}

	if score := handScore(me); score >= 21 {
		state.AutoHold = true
		return state
	}

	state.Actions = []Action{Hit, Hold, Stand}
	return state
}

// handScore reads the ledger-reported total, the ground truth for play
// decisions. A player without a hand scores 0.
func handScore(p table.Player) int {
	if p.Hand == nil {
		return 0
	}

	return p.Hand.ReportedTotal
}
