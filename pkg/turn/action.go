package turn

import (
	"encoding/json"
	"fmt"
)

// Action represents an action a player can send to the ledger
type Action string

// action constants
const (
	Sit   Action = "sit"
	Bid   Action = "bid"
	Hit   Action = "hit"
	Hold  Action = "hold"
	Stand Action = "stand"
	Kick  Action = "kick"
)

var allowedActions = map[Action]bool{
	Sit:   true,
	Bid:   true,
	Hit:   true,
	Hold:  true,
	Stand: true,
	Kick:  true,
}

// FromString returns an action for the given identifier
func FromString(s string) (Action, error) {
	if _, ok := allowedActions[Action(s)]; ok {
		return Action(s), nil
	}

	return "", fmt.Errorf("unknown action for identifier: %s", s)
}

func (a Action) String() string {
	switch a {
	case Sit:
		return "Sit"
	case Bid:
		return "Bid"
	case Hit:
		return "Hit"
	case Hold:
		return "Hold"
	case Stand:
		return "Stand"
	case Kick:
		return "Kick"
	}

	panic("unknown action")
}

// MarshalJSON encodes the action into JSON
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}{
		ID:   string(a),
		Name: a.String(),
	})
}

// UnmarshalJSON decodes either a bare identifier or the object form
// produced by MarshalJSON
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Action(s)
		return nil
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	*a = Action(obj.ID)
	return nil
}

// IsValid returns true if the action is a known identifier
func (a Action) IsValid() bool {
	_, ok := allowedActions[a]
	return ok
}
