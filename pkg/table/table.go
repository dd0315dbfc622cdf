package table

import (
	"encoding/json"
	"fmt"

	"blackjack-observer/pkg/deck"
)

// NumSeats is the fixed number of seats at a table
const NumSeats = 6

// PlayerState is the ledger-tracked state of a seated player
type PlayerState string

// player state constants. NotPlaying is an unoccupied or not-dealt-in seat.
const (
	PlayerStateNotPlaying PlayerState = "NotPlaying"
	PlayerStateBid        PlayerState = "Bid"
	PlayerStateHit        PlayerState = "Hit"
	PlayerStateHold       PlayerState = "Hold"
	PlayerStateStand      PlayerState = "Stand"
)

var validPlayerStates = map[PlayerState]bool{
	PlayerStateNotPlaying: true,
	PlayerStateBid:        true,
	PlayerStateHit:        true,
	PlayerStateHold:       true,
	PlayerStateStand:      true,
}

// UnmarshalJSON decodes a player state and rejects unknown values
func (s *PlayerState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if !validPlayerStates[PlayerState(raw)] {
		return fmt.Errorf("unknown player state: %s", raw)
	}

	*s = PlayerState(raw)
	return nil
}

// Player is one seat's occupant. An empty address means the seat is empty.
// Hand is nil until the player has been dealt in.
type Player struct {
	Address string      `json:"address"`
	Hand    *deck.Hand  `json:"hand"`
	State   PlayerState `json:"state"`
}

// Occupied returns true if a player is sitting in the seat
func (p Player) Occupied() bool {
	return p.Address != ""
}

// Table is one immutable snapshot of the remote table. A fresh value is
// decoded on every poll; prior snapshots are never mutated.
type Table struct {
	PlayersCount int              `json:"players_count"`
	Players      [NumSeats]Player `json:"players"`
	DealerHand   *deck.Hand       `json:"dealer_hand"`
	State        GameState        `json:"state"`
}

// SeatOf returns the seat whose occupant matches the given address
func (t *Table) SeatOf(address string) (int, bool) {
	if address == "" {
		return 0, false
	}

	for seat, p := range t.Players {
		if p.Address == address {
			return seat, true
		}
	}

	return 0, false
}

// Validate checks the snapshot's internal invariants: a PlayerTurn must
// target a valid, occupied seat
func (t *Table) Validate() error {
	pt, ok := t.State.PlayerTurn()
	if !ok {
		return nil
	}

	if pt.Seat < 0 || pt.Seat >= NumSeats {
		return fmt.Errorf("player turn targets seat %d, want 0 through %d", pt.Seat, NumSeats-1)
	}

	if !t.Players[pt.Seat].Occupied() {
		return fmt.Errorf("player turn targets empty seat %d", pt.Seat)
	}

	return nil
}

// Decode parses a table snapshot from its wire JSON and validates it
func Decode(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("could not decode table: %w", err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return &t, nil
}
