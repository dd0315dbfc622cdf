// Package ledger defines the boundary to the remote, authoritative ledger.
// The core only ever observes ledger state through Querier and mutates it
// through Actor; signing, chain selection and fee handling live behind the
// gateway process this package talks to.
package ledger

import (
	"context"

	"blackjack-observer/pkg/table"
)

// Querier is the read-only ledger interface
type Querier interface {
	// GetTable returns the current table snapshot
	GetTable(ctx context.Context) (*table.Table, error)

	// GetLastScore returns the most recent round's score report
	GetLastScore(ctx context.Context) (*table.ScoreReport, error)

	// GetUserBalance returns the game contract's betting balance for an
	// address, in minor units
	GetUserBalance(ctx context.Context, address string) (int64, error)

	// GetBankBalance returns the house bank contract's balance
	GetBankBalance(ctx context.Context) (int64, error)

	// GetWalletBalance returns the chain wallet balance for an address
	GetWalletBalance(ctx context.Context, address string) (int64, error)
}

// Actor is the state-mutating ledger interface. Each call is opaque: its
// effect is observed only through a later snapshot, never through the
// call's own result.
type Actor interface {
	Sit(ctx context.Context, seat int) error
	Bid(ctx context.Context, seat int, amount int64) error
	Hit(ctx context.Context, seat int) error
	Hold(ctx context.Context, seat int) error
	Stand(ctx context.Context, seat int) error
	Kick(ctx context.Context, seat int, target string) error
}

// Client is the full ledger boundary. BoundAddress is the identity the
// underlying transport signs with; callers must not poll or act until it
// matches the identity they were configured for.
type Client interface {
	Querier
	Actor

	BoundAddress() string
}
