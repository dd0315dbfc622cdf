// Package mux exposes the observer's derived view over HTTP for the GUI:
// the latest snapshot with turn and kick state, a WebSocket push of the
// same, and action endpoints that refuse illegal actions before anything is
// sent to the ledger.
package mux

import (
	"net/http"

	"github.com/google/uuid"
	gmux "github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"

	"blackjack-observer/pkg/ledger"
	"blackjack-observer/pkg/poller"
)

// SnapshotSource provides the latest ledger observation; satisfied by
// *poller.Poller
type SnapshotSource interface {
	Current() *poller.Snapshot
	Subscribe() (uuid.UUID, <-chan poller.Snapshot)
	Unsubscribe(id uuid.UUID)
}

// Options carries the mux's collaborators
type Options struct {
	Identity string
	Source   SnapshotSource
	Querier  ledger.Querier
	Actor    ledger.Actor
	Clock    clockwork.Clock
}

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version  string
	identity string
	source   SnapshotSource
	querier  ledger.Querier
	actor    ledger.Actor
	clock    clockwork.Clock
}

// NewMux returns a new HTTP mux
func NewMux(version string, opts Options) *Mux {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	this := &Mux{
		Router:   gmux.NewRouter(),
		version:  version,
		identity: opts.Identity,
		source:   opts.Source,
		querier:  opts.Querier,
		actor:    opts.Actor,
		clock:    clock,
	}

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodGet).Path("/state").Handler(this.getState())
	r.Methods(http.MethodGet).Path("/score").Handler(this.getScore())
	r.Methods(http.MethodGet).Path("/ws").Handler(this.getWS())
	r.Methods(http.MethodPost).Path("/table/{action:[a-z]+}").Handler(this.postTableAction())

	return this
}
