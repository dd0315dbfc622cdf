package kick

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"blackjack-observer/pkg/table"
	"blackjack-observer/pkg/turn"
)

const turnStart int64 = 1700000000

func actingTable(seat int) *table.Table {
	t := &table.Table{State: table.NewPlayerTurn(seat, false, turnStart)}
	t.Players[seat].Address = "secret1aaa"
	t.Players[5].Address = "secret1bbb"
	return t
}

func TestStatus_graceCountdown(t *testing.T) {
	tbl := actingTable(3)

	statuses := Status(tbl, 5, time.Unix(turnStart, 0))
	assert.Equal(t, SeatStatus{Eligible: false, Remaining: 300}, statuses[3])

	statuses = Status(tbl, 5, time.Unix(turnStart+120, 0))
	assert.Equal(t, SeatStatus{Eligible: false, Remaining: 180}, statuses[3])

	statuses = Status(tbl, 5, time.Unix(turnStart+299, 0))
	assert.Equal(t, SeatStatus{Eligible: false, Remaining: 1}, statuses[3])

	statuses = Status(tbl, 5, time.Unix(turnStart+300, 0))
	assert.Equal(t, SeatStatus{Eligible: true, Remaining: 0}, statuses[3])

	statuses = Status(tbl, 5, time.Unix(turnStart+10000, 0))
	assert.Equal(t, SeatStatus{Eligible: true, Remaining: 0}, statuses[3])
}

func TestStatus_remainingMonotone(t *testing.T) {
	tbl := actingTable(3)

	prev := int64(301)
	for offset := int64(0); offset <= 400; offset += 7 {
		statuses := Status(tbl, 5, time.Unix(turnStart+offset, 0))
		assert.LessOrEqual(t, statuses[3].Remaining, prev)
		assert.GreaterOrEqual(t, statuses[3].Remaining, int64(0))
		prev = statuses[3].Remaining
	}
	assert.Equal(t, int64(0), prev)
}

func TestStatus_neverSelfKick(t *testing.T) {
	tbl := actingTable(3)

	// well past the grace period, the acting seat still can't kick itself
	statuses := Status(tbl, 3, time.Unix(turnStart+10000, 0))
	assert.False(t, statuses[3].Eligible)
	assert.Equal(t, int64(0), statuses[3].Remaining)
}

func TestStatus_onlyActingSeat(t *testing.T) {
	tbl := actingTable(3)

	statuses := Status(tbl, 5, time.Unix(turnStart+10000, 0))
	for seat, status := range statuses {
		if seat == 3 {
			continue
		}

		assert.Equal(t, SeatStatus{}, status, "seat %d", seat)
	}
}

func TestStatus_noTurnNoKicks(t *testing.T) {
	for _, state := range []table.GameState{table.NoPlayers(), table.DealerTurn()} {
		tbl := &table.Table{State: state}
		statuses := Status(tbl, turn.NoSeat, time.Unix(turnStart, 0))
		assert.Equal(t, [table.NumSeats]SeatStatus{}, statuses)
	}
}

func TestStatus_observerCanKick(t *testing.T) {
	// an unseated observer is not the acting seat, so eligibility is
	// reported; the ledger will still reject a kick from a non-player
	tbl := actingTable(3)
	statuses := Status(tbl, turn.NoSeat, time.Unix(turnStart+300, 0))
	assert.True(t, statuses[3].Eligible)
}
