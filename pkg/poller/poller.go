// Package poller periodically observes the remote ledger and fans fresh
// table snapshots out to subscribers.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"blackjack-observer/pkg/ledger"
	"blackjack-observer/pkg/table"
)

// ErrIdentityMismatch is returned by Start when the transport signs for a
// different address than the poller was configured with
var ErrIdentityMismatch = errors.New("transport identity does not match configured identity")

const subscriberBuffer = 16

// Snapshot is one observation of remote state: the decoded table plus the
// identity's betting balance
type Snapshot struct {
	Table   *table.Table `json:"table"`
	Balance int64        `json:"balance"`
	Taken   time.Time    `json:"taken"`
}

// Poller drives the periodic ledger queries. Each tick produces a wholly
// new Snapshot; subscribers only see a snapshot when its content differs
// from the previous one.
type Poller struct {
	client   ledger.Client
	identity string
	interval time.Duration
	clock    clockwork.Clock
	log      *logrus.Entry

	mu          sync.Mutex
	subscribers map[uuid.UUID]chan Snapshot
	current     *Snapshot
	lastSerial  string
	lastErr     error

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a poller for the given identity. The clock is injected so
// tests can drive ticks without wall-clock waits.
func New(client ledger.Client, identity string, interval time.Duration, clock clockwork.Clock) *Poller {
	return &Poller{
		client:      client,
		identity:    identity,
		interval:    interval,
		clock:       clock,
		log:         logrus.WithField("component", "poller"),
		subscribers: make(map[uuid.UUID]chan Snapshot),
	}
}

// Start begins polling. It refuses to start until the transport's bound
// identity matches the configured one, so a half-finished wallet handshake
// can never drive queries for the wrong address.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("poller already started")
	}

	bound := p.client.BoundAddress()
	if bound == "" || bound != p.identity {
		return fmt.Errorf("%w: bound %q, configured %q", ErrIdentityMismatch, bound, p.identity)
	}

	ctx, cancel := context.WithCancel(ctx)
	p.started = true
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx)
	return nil
}

// Stop tears the poller down and closes all subscriber channels. Safe to
// call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	for id, ch := range p.subscribers {
		close(ch)
		delete(p.subscribers, id)
	}
}

// Subscribe registers a new subscriber and returns its id and channel. The
// channel is closed on Stop.
func (p *Poller) Subscribe() (uuid.UUID, <-chan Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := uuid.New()
	ch := make(chan Snapshot, subscriberBuffer)
	p.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (p *Poller) Unsubscribe(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ch, ok := p.subscribers[id]; ok {
		close(ch)
		delete(p.subscribers, id)
	}
}

// Current returns the latest snapshot, or nil if no tick has succeeded yet
func (p *Poller) Current() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// LastError returns the error from the most recent tick, nil after a
// successful tick
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	// first observation happens right away, not an interval later
	p.observe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.observe(ctx)
		}
	}
}

// observe runs one tick. A failed query is recorded and logged, never
// retried within the tick: the derived view simply goes stale until a later
// tick succeeds.
func (p *Poller) observe(ctx context.Context) {
	err := p.tick(ctx)

	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		p.log.WithError(err).Error("tick failed")
	}
}

func (p *Poller) tick(ctx context.Context) error {
	tbl, err := p.client.GetTable(ctx)
	if err != nil {
		return fmt.Errorf("could not query table: %w", err)
	}

	balance, err := p.client.GetUserBalance(ctx, p.identity)
	if err != nil {
		return fmt.Errorf("could not query user balance: %w", err)
	}

	serial, err := json.Marshal(struct {
		Table   *table.Table `json:"table"`
		Balance int64        `json:"balance"`
	}{tbl, balance})
	if err != nil {
		return fmt.Errorf("could not serialize snapshot: %w", err)
	}

	snapshot := Snapshot{Table: tbl, Balance: balance, Taken: p.clock.Now()}

	p.mu.Lock()
	if string(serial) == p.lastSerial {
		p.current = &snapshot
		p.mu.Unlock()
		return nil
	}

	p.lastSerial = string(serial)
	p.current = &snapshot
	subscribers := make([]chan Snapshot, 0, len(p.subscribers))
	for _, ch := range p.subscribers {
		subscribers = append(subscribers, ch)
	}
	p.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- snapshot:
		default:
			p.log.Warn("subscriber channel full, dropping snapshot")
		}
	}

	return nil
}
