package table

import (
	"encoding/json"
	"fmt"
)

// Phase identifies which variant of the game state is active
type Phase int

// phase constants
const (
	PhaseNoPlayers Phase = iota
	PhaseDealerTurn
	PhasePlayerTurn
)

func (p Phase) String() string {
	switch p {
	case PhaseNoPlayers:
		return "NoPlayers"
	case PhaseDealerTurn:
		return "DealerTurn"
	case PhasePlayerTurn:
		return "PlayerTurn"
	}

	panic("unknown phase")
}

// PlayerTurn carries the payload of the PlayerTurn variant. TurnStartTime is
// unix seconds of the ledger block that handed the seat the turn.
type PlayerTurn struct {
	Seat          int   `json:"player_seat"`
	IsFirst       bool  `json:"is_first"`
	TurnStartTime int64 `json:"turn_start_time"`
}

// GameState is a tagged union over the three table phases. On the wire it is
// either a bare string ("NoPlayers", "DealerTurn") or an object of the form
// {"PlayerTurn":{...}}.
type GameState struct {
	phase      Phase
	playerTurn PlayerTurn
}

// NoPlayers returns the empty-table state
func NoPlayers() GameState {
	return GameState{phase: PhaseNoPlayers}
}

// DealerTurn returns the dealer-resolution state
func DealerTurn() GameState {
	return GameState{phase: PhaseDealerTurn}
}

// NewPlayerTurn returns a state where seat holds the turn
func NewPlayerTurn(seat int, isFirst bool, turnStartTime int64) GameState {
	return GameState{
		phase:      PhasePlayerTurn,
		playerTurn: PlayerTurn{Seat: seat, IsFirst: isFirst, TurnStartTime: turnStartTime},
	}
}

// Phase returns the active variant
func (g GameState) Phase() Phase {
	return g.phase
}

// PlayerTurn returns the PlayerTurn payload and whether that variant is
// active
func (g GameState) PlayerTurn() (PlayerTurn, bool) {
	if g.phase != PhasePlayerTurn {
		return PlayerTurn{}, false
	}

	return g.playerTurn, true
}

func (g GameState) String() string {
	if g.phase == PhasePlayerTurn {
		return fmt.Sprintf("PlayerTurn(seat=%d, isFirst=%t)", g.playerTurn.Seat, g.playerTurn.IsFirst)
	}

	return g.phase.String()
}

type playerTurnWire struct {
	PlayerTurn PlayerTurn `json:"PlayerTurn"`
}

// UnmarshalJSON decodes the wire representation of the state union
func (g *GameState) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		switch tag {
		case "NoPlayers":
			*g = NoPlayers()
			return nil
		case "DealerTurn":
			*g = DealerTurn()
			return nil
		default:
			return fmt.Errorf("unknown game state: %s", tag)
		}
	}

	var wire playerTurnWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("could not decode game state: %w", err)
	}

	*g = GameState{phase: PhasePlayerTurn, playerTurn: wire.PlayerTurn}
	return nil
}

// MarshalJSON encodes the state back into its wire representation
func (g GameState) MarshalJSON() ([]byte, error) {
	switch g.phase {
	case PhaseNoPlayers, PhaseDealerTurn:
		return json.Marshal(g.phase.String())
	case PhasePlayerTurn:
		return json.Marshal(playerTurnWire{PlayerTurn: g.playerTurn})
	}

	return nil, fmt.Errorf("unknown phase: %d", g.phase)
}
