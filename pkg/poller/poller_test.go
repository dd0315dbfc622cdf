package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blackjack-observer/pkg/table"
)

const identity = "secret1aaa"

type fakeClient struct {
	mu         sync.Mutex
	bound      string
	tbl        *table.Table
	balance    int64
	tableErr   error
	tableCalls int
}

func (f *fakeClient) BoundAddress() string { return f.bound }

func (f *fakeClient) GetTable(context.Context) (*table.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tableCalls++
	if f.tableErr != nil {
		return nil, f.tableErr
	}

	copied := *f.tbl
	return &copied, nil
}

func (f *fakeClient) GetLastScore(context.Context) (*table.ScoreReport, error) {
	return &table.ScoreReport{}, nil
}

func (f *fakeClient) GetUserBalance(context.Context, string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, nil
}

func (f *fakeClient) GetBankBalance(context.Context) (int64, error)           { return 0, nil }
func (f *fakeClient) GetWalletBalance(context.Context, string) (int64, error) { return 0, nil }
func (f *fakeClient) Sit(context.Context, int) error                          { return nil }
func (f *fakeClient) Bid(context.Context, int, int64) error                   { return nil }
func (f *fakeClient) Hit(context.Context, int) error                          { return nil }
func (f *fakeClient) Hold(context.Context, int) error                         { return nil }
func (f *fakeClient) Stand(context.Context, int) error                        { return nil }
func (f *fakeClient) Kick(context.Context, int, string) error                 { return nil }

func (f *fakeClient) setTable(tbl *table.Table) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tbl = tbl
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tableCalls
}

func emptyTable() *table.Table {
	return &table.Table{State: table.NoPlayers()}
}

func seatedTable(seat int) *table.Table {
	t := &table.Table{PlayersCount: 1, State: table.NewPlayerTurn(seat, true, 1700000000)}
	t.Players[seat].Address = identity
	return t
}

func recv(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()

	select {
	case snapshot := <-ch:
		return snapshot
	case <-time.After(time.Second * 5):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func newTestPoller(t *testing.T, client *fakeClient) (*Poller, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	p := New(client, identity, time.Second*5, clock)
	t.Cleanup(p.Stop)
	return p, clock
}

func TestPoller_identityGuard(t *testing.T) {
	client := &fakeClient{bound: "", tbl: emptyTable()}
	p, _ := newTestPoller(t, client)

	err := p.Start(context.Background())
	require.ErrorIs(t, err, ErrIdentityMismatch)

	client.bound = "secret1other"
	err = p.Start(context.Background())
	require.ErrorIs(t, err, ErrIdentityMismatch)

	client.bound = identity
	require.NoError(t, p.Start(context.Background()))
	assert.Error(t, p.Start(context.Background()), "double start must fail")
}

func TestPoller_publishesOnChange(t *testing.T) {
	client := &fakeClient{bound: identity, tbl: emptyTable(), balance: 0}
	p, clock := newTestPoller(t, client)

	_, ch := p.Subscribe()
	require.NoError(t, p.Start(context.Background()))

	snapshot := recv(t, ch)
	assert.Equal(t, table.PhaseNoPlayers, snapshot.Table.State.Phase())

	client.setTable(seatedTable(3))
	clock.BlockUntil(1)
	clock.Advance(time.Second * 5)

	snapshot = recv(t, ch)
	assert.Equal(t, table.PhasePlayerTurn, snapshot.Table.State.Phase())

	current := p.Current()
	require.NotNil(t, current)
	assert.Equal(t, table.PhasePlayerTurn, current.Table.State.Phase())
	assert.NoError(t, p.LastError())
}

func TestPoller_dedupsIdenticalSnapshots(t *testing.T) {
	client := &fakeClient{bound: identity, tbl: emptyTable()}
	p, clock := newTestPoller(t, client)

	_, ch := p.Subscribe()
	require.NoError(t, p.Start(context.Background()))

	recv(t, ch)
	firstCalls := client.calls()

	// two more ticks with an unchanged table must not publish
	for i := 0; i < 2; i++ {
		before := client.calls()
		clock.BlockUntil(1)
		clock.Advance(time.Second * 5)
		require.Eventually(t, func() bool {
			return client.calls() > before
		}, time.Second*5, time.Millisecond*10)
	}

	// a changed table publishes again; if the dedup were broken the
	// channel would hold stale duplicates ahead of this one
	client.setTable(seatedTable(3))
	clock.BlockUntil(1)
	clock.Advance(time.Second * 5)

	snapshot := recv(t, ch)
	assert.Equal(t, table.PhasePlayerTurn, snapshot.Table.State.Phase())
	assert.Empty(t, ch)
	assert.GreaterOrEqual(t, client.calls(), firstCalls+2)
}

func TestPoller_queryFailureGoesStale(t *testing.T) {
	client := &fakeClient{bound: identity, tbl: seatedTable(3)}
	p, clock := newTestPoller(t, client)

	_, ch := p.Subscribe()
	require.NoError(t, p.Start(context.Background()))
	recv(t, ch)

	client.mu.Lock()
	client.tableErr = errors.New("chain unreachable")
	client.mu.Unlock()

	clock.BlockUntil(1)
	clock.Advance(time.Second * 5)

	require.Eventually(t, func() bool {
		return p.LastError() != nil
	}, time.Second*5, time.Millisecond*10)

	// the stale snapshot is still served
	require.NotNil(t, p.Current())
	assert.Equal(t, table.PhasePlayerTurn, p.Current().Table.State.Phase())

	// recovery clears the error
	client.mu.Lock()
	client.tableErr = nil
	client.mu.Unlock()

	clock.BlockUntil(1)
	clock.Advance(time.Second * 5)

	require.Eventually(t, func() bool {
		return p.LastError() == nil
	}, time.Second*5, time.Millisecond*10)
}

func TestPoller_stop(t *testing.T) {
	client := &fakeClient{bound: identity, tbl: emptyTable()}
	p, _ := newTestPoller(t, client)

	_, ch := p.Subscribe()
	require.NoError(t, p.Start(context.Background()))
	recv(t, ch)

	p.Stop()
	p.Stop() // idempotent

	_, open := <-ch
	assert.False(t, open, "subscriber channel must be closed after Stop")
}

func TestPoller_unsubscribe(t *testing.T) {
	client := &fakeClient{bound: identity, tbl: emptyTable()}
	p, _ := newTestPoller(t, client)

	id, ch := p.Subscribe()
	p.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)
}
