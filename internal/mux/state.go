package mux

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"blackjack-observer/pkg/kick"
	"blackjack-observer/pkg/poller"
	"blackjack-observer/pkg/table"
	"blackjack-observer/pkg/turn"
)

var errNoSnapshot = errors.New("no snapshot observed yet")

// view is the single document the GUI renders from: the raw snapshot plus
// everything derived from it for the local identity
type view struct {
	Identity string                          `json:"identity"`
	Snapshot *poller.Snapshot                `json:"snapshot"`
	Turn     turn.State                      `json:"turn"`
	Kick     [table.NumSeats]kick.SeatStatus `json:"kick"`
	Scored   bool                            `json:"scored"`
}

// buildView derives the current view. The score report is advisory here
// (it only refines a waiting message), so a failed score query degrades to
// "not scored" instead of breaking the whole view.
func (m *Mux) buildView(r *http.Request) (*view, error) {
	snapshot := m.source.Current()
	if snapshot == nil {
		return nil, errNoSnapshot
	}

	scored := false
	if seat, ok := snapshot.Table.SeatOf(m.identity); ok {
		report, err := m.querier.GetLastScore(r.Context())
		if err != nil {
			logrus.WithError(err).Warn("could not fetch score report for view")
		} else if _, ok := report.ScoreFor(seat); ok {
			scored = true
		}
	}

	derived := turn.Derive(snapshot.Table, m.identity, scored)

	return &view{
		Identity: m.identity,
		Snapshot: snapshot,
		Turn:     derived,
		Kick:     kick.Status(snapshot.Table, derived.MySeat, m.clock.Now()),
		Scored:   scored,
	}, nil
}

func (m *Mux) getState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := m.buildView(r)
		if err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, err)
			return
		}

		writeJSON(w, http.StatusOK, v)
	}
}

func (m *Mux) getScore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := m.querier.GetLastScore(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}
