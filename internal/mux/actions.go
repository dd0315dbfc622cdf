package mux

import (
	"errors"
	"fmt"
	"net/http"

	gmux "github.com/gorilla/mux"

	"blackjack-observer/pkg/table"
	"blackjack-observer/pkg/turn"
)

type actionRequest struct {
	Seat   int    `json:"seat"`
	Amount int64  `json:"amount,omitempty"`
	Target string `json:"target,omitempty"`
}

type actionResponse struct {
	Status string      `json:"status"`
	Action turn.Action `json:"action"`
}

// postTableAction validates an action against the derived view before
// anything reaches the ledger: an illegal action is rejected locally with a
// conflict, the remote call never happens
func (m *Mux) postTableAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, err := turn.FromString(gmux.Vars(r)["action"])
		if err != nil {
			writeJSONError(w, http.StatusNotFound, err)
			return
		}

		var req actionRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		v, err := m.buildView(r)
		if err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, err)
			return
		}

		if err := m.checkLegal(v, action, req); err != nil {
			writeJSONError(w, http.StatusConflict, err)
			return
		}

		if err := m.submit(r, action, req); err != nil {
			writeJSONError(w, http.StatusBadGateway, err)
			return
		}

		writeJSON(w, http.StatusAccepted, actionResponse{Status: "submitted", Action: action})
	}
}

func (m *Mux) checkLegal(v *view, action turn.Action, req actionRequest) error {
	switch action {
	case turn.Sit:
		if v.Turn.Seated {
			return fmt.Errorf("already seated at seat %d", v.Turn.MySeat)
		}

		if req.Seat < 0 || req.Seat >= table.NumSeats {
			return fmt.Errorf("seat %d does not exist", req.Seat)
		}

		if v.Snapshot.Table.Players[req.Seat].Occupied() {
			return fmt.Errorf("seat %d is taken", req.Seat)
		}

		return nil

	case turn.Kick:
		return m.checkKickLegal(v, req)

	case turn.Bid:
		if req.Amount <= 0 {
			return errors.New("bid amount must be positive")
		}
	}

	// bid, hit, hold and stand are all gated by the derived action set
	if !v.Turn.Allows(action) {
		return fmt.Errorf("%s is not legal right now", action)
	}

	if req.Seat != v.Turn.MySeat {
		return fmt.Errorf("seat %d is not yours", req.Seat)
	}

	return nil
}

func (m *Mux) checkKickLegal(v *view, req actionRequest) error {
	if !v.Turn.Seated {
		return errors.New("only seated players may kick")
	}

	if req.Seat != v.Turn.MySeat {
		return fmt.Errorf("seat %d is not yours", req.Seat)
	}

	pt, ok := v.Snapshot.Table.State.PlayerTurn()
	if !ok {
		return errors.New("no player holds the turn")
	}

	if v.Snapshot.Table.Players[pt.Seat].Address != req.Target {
		return fmt.Errorf("target %s does not hold the turn", req.Target)
	}

	status := v.Kick[pt.Seat]
	if !status.Eligible {
		return fmt.Errorf("seat %d may not be kicked for another %ds", pt.Seat, status.Remaining)
	}

	return nil
}

func (m *Mux) submit(r *http.Request, action turn.Action, req actionRequest) error {
	ctx := r.Context()

	switch action {
	case turn.Sit:
		return m.actor.Sit(ctx, req.Seat)
	case turn.Bid:
		return m.actor.Bid(ctx, req.Seat, req.Amount)
	case turn.Hit:
		return m.actor.Hit(ctx, req.Seat)
	case turn.Hold:
		return m.actor.Hold(ctx, req.Seat)
	case turn.Stand:
		return m.actor.Stand(ctx, req.Seat)
	case turn.Kick:
		return m.actor.Kick(ctx, req.Seat, req.Target)
	}

	return fmt.Errorf("unknown action: %s", action)
}
