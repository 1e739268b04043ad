package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undeconstructed/gamehub/game"
)

func testHub() *Hub {
	return NewHub(zerolog.Nop(), 100*time.Millisecond)
}

func c4Move(column int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"game_type":"connect_4","column":%d}`, column))
}

func TestHub_ids(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)
	assert.Regexp(t, `^game_[A-Z0-9]{7}$`, string(id))

	sid, err := h.Join(id, "Alice")
	require.NoError(t, err)
	assert.Regexp(t, `^session_[A-Z0-9]{26}$`, string(sid))
}

func TestHub_getMissing(t *testing.T) {
	h := testHub()
	_, err := h.Get("game_NOPE")
	require.Error(t, err)
	assert.Regexp(t, `^game game_[A-Z0-9]+ does not exist$`, err.Error())

	herr := err.(*Error)
	assert.True(t, herr.NotFound())
}

func TestHub_joinFlow(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)

	inst, err := h.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 0, inst.Clock())

	sidA, err := h.Join(id, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 1, inst.Clock())

	gid, user, err := h.SessionLookup(sidA)
	require.NoError(t, err)
	assert.Equal(t, id, gid)
	assert.Equal(t, "Alice", user)

	// second join fills and auto-starts connect 4
	_, err = h.Join(id, "Bob")
	require.NoError(t, err)
	assert.Equal(t, 2, inst.Clock())

	state := inst.State()
	assert.Equal(t, game.StageInProgress, state.Stage)
	assert.Equal(t, []string{"Alice", "Bob"}, state.Players)
	assert.Equal(t, []string{"Alice"}, state.CanMove)
}

func TestHub_joinRejections(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)

	_, err := h.Join(id, "")
	require.Error(t, err)
	assert.Regexp(t, `^invalid username \(too short\): $`, err.Error())

	_, err = h.Join(id, "averylongusername")
	require.Error(t, err)
	assert.Regexp(t, `^invalid username \(longer than 12 characters\): averylongusername$`, err.Error())

	_, err = h.Join(id, "Alice")
	require.NoError(t, err)
	_, err = h.Join(id, "Alice")
	require.Error(t, err)
	assert.Regexp(t, `^invalid username \(already in game game_[A-Z0-9]+\): Alice$`, err.Error())

	_, err = h.Join(id, "Bob")
	require.NoError(t, err)
	_, err = h.Join(id, "Carol")
	require.Error(t, err)
	assert.Regexp(t, `^game has already started \(game_[A-Z0-9]+\)$`, err.Error())

	// a failed join must not leak a session
	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Len(t, h.sessions, 2)
}

func TestHub_submitFlow(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)
	sidA, err := h.Join(id, "Alice")
	require.NoError(t, err)
	sidB, err := h.Join(id, "Bob")
	require.NoError(t, err)

	clock, err := h.Submit(id, sidA, c4Move(4))
	require.NoError(t, err)
	assert.Equal(t, 3, clock)

	inst, _ := h.Get(id)
	state := inst.State()
	payload := state.Payload.(game.Connect4State)
	assert.Equal(t, []string{"Alice"}, payload.Cells[3])
	assert.Equal(t, []string{"Bob"}, state.CanMove)

	// not Alice's turn any more
	_, err = h.Submit(id, sidA, c4Move(4))
	require.Error(t, err)
	assert.Regexp(t, `^player Alice cannot move at the moment \(game_[A-Z0-9]+\)$`, err.Error())

	// bad column from Bob
	_, err = h.Submit(id, sidB, c4Move(9))
	require.Error(t, err)
	assert.Regexp(t, `^invalid move: column 9 does not exist \(game_[A-Z0-9]+\)$`, err.Error())
}

func TestHub_submitBeforeStart(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)
	sid, err := h.Join(id, "Alice")
	require.NoError(t, err)

	_, err = h.Submit(id, sid, c4Move(1))
	require.Error(t, err)
	assert.Regexp(t, `^game has not started yet \(game_[A-Z0-9]+\)$`, err.Error())
}

func TestHub_submitAfterEnd(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)
	sidA, _ := h.Join(id, "Alice")
	sidB, _ := h.Join(id, "Bob")

	// Alice wins down column 4
	bobCols := []int{1, 2, 3}
	for i := 0; i < 3; i++ {
		_, err := h.Submit(id, sidA, c4Move(4))
		require.NoError(t, err)
		_, err = h.Submit(id, sidB, c4Move(bobCols[i]))
		require.NoError(t, err)
	}
	clock, err := h.Submit(id, sidA, c4Move(4))
	require.NoError(t, err)
	assert.Equal(t, 9, clock)

	inst, _ := h.Get(id)
	state := inst.State()
	assert.Equal(t, game.StageEnded, state.Stage)
	assert.Equal(t, []string{"Alice"}, state.Winners)

	_, err = h.Submit(id, sidB, c4Move(1))
	require.Error(t, err)
	assert.Regexp(t, `^game game_[A-Z0-9]+ has already ended \(game_[A-Z0-9]+\)$`, err.Error())
}

func TestHub_sessionBoundToGame(t *testing.T) {
	h := testHub()
	id1 := h.Create(game.TypeConnect4)
	id2 := h.Create(game.TypeConnect4)

	sid, err := h.Join(id1, "Alice")
	require.NoError(t, err)
	_, err = h.Join(id1, "Bob")
	require.NoError(t, err)

	_, err = h.Submit(id2, sid, c4Move(1))
	require.Error(t, err)
	assert.Regexp(t, `^session session_[A-Z0-9]+ does not exist$`, err.Error())

	_, err = h.Submit(id1, "session_FAKE", c4Move(1))
	require.Error(t, err)
	assert.Regexp(t, `^session session_[A-Z0-9]+ does not exist$`, err.Error())
}

func TestHub_badMovePayload(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)
	sid, _ := h.Join(id, "Alice")
	_, err := h.Join(id, "Bob")
	require.NoError(t, err)

	_, err = h.Submit(id, sid, json.RawMessage(`{"game_type":"snake","direction":"up"}`))
	require.Error(t, err)
	assert.Regexp(t, `^Json deserialize error:`, err.Error())

	// clock untouched by the failure
	inst, _ := h.Get(id)
	assert.Equal(t, 2, inst.Clock())
}

func TestHub_waitForUpdate(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)
	sidA, _ := h.Join(id, "Alice")
	_, err := h.Join(id, "Bob")
	require.NoError(t, err)

	inst, _ := h.Get(id)
	since := inst.Clock()

	done := make(chan int, 1)
	go func() {
		clock, _ := h.WaitForUpdate(context.Background(), id, &since)
		done <- clock
	}()

	time.Sleep(10 * time.Millisecond)
	_, err = h.Submit(id, sidA, c4Move(4))
	require.NoError(t, err)

	select {
	case clock := <-done:
		assert.Equal(t, since+1, clock)
	case <-time.After(time.Second):
		t.Fatal("waiter did not wake")
	}
}

func TestHub_waitForUpdateTimesOut(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)

	start := time.Now()
	clock, err := h.WaitForUpdate(context.Background(), id, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, clock)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestHub_waitForUpdateBehindReturnsNow(t *testing.T) {
	h := testHub()
	id := h.Create(game.TypeConnect4)
	_, err := h.Join(id, "Alice")
	require.NoError(t, err)

	zero := 0
	clock, err := h.WaitForUpdate(context.Background(), id, &zero)
	require.NoError(t, err)
	assert.Equal(t, 1, clock)
}

func TestHub_list(t *testing.T) {
	h := testHub()
	id1 := h.Create(game.TypeConnect4)
	h.Create(game.TypeSnake)
	id3 := h.Create(game.TypeConnect4)

	_, err := h.Join(id1, "Alice")
	require.NoError(t, err)

	opts := SearchOptions{Page: 1, SortKey: ByLastUpdated, SortOrder: Desc}
	sums, total := h.List(opts)
	assert.Equal(t, 3, total)
	require.Len(t, sums, 3)

	one := 1
	opts.Players = &one
	sums, total = h.List(opts)
	assert.Equal(t, 1, total)
	assert.Equal(t, id1, sums[0].GameId)

	ct := game.TypeConnect4
	opts = SearchOptions{Page: 1, SortKey: ByLastUpdated, SortOrder: Desc, GameType: &ct}
	sums, total = h.List(opts)
	assert.Equal(t, 2, total)
	assert.ElementsMatch(t, []GameId{id1, id3}, []GameId{sums[0].GameId, sums[1].GameId})
}
