/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomCode(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		code := newRoomCode()

		assert.Len(t, code, codeLength)
		for _, c := range code {
			assert.Contains(t, codeAlphabet, string(c))
		}
	}
}

func TestCreateAssignsDistinctCodes(t *testing.T) {
	t.Parallel()

	rm := newRoomManager(testConfig())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room := rm.create("")
		assert.False(t, seen[room.code])
		seen[room.code] = true
	}

	assert.Equal(t, 50, rm.count())
}

func TestGetIsCaseAndWhitespaceInsensitive(t *testing.T) {
	t.Parallel()

	rm := newRoomManager(testConfig())
	room := rm.create("")

	found, ok := rm.get("  " + strings.ToLower(room.code) + " ")
	require.True(t, ok)
	assert.Same(t, room, found)
}

func TestGetUnknownCode(t *testing.T) {
	t.Parallel()

	rm := newRoomManager(testConfig())

	_, ok := rm.get("NOSUCH")
	assert.False(t, ok)
}

func TestCreateFallsBackToConfiguredLanguage(t *testing.T) {
	t.Parallel()

	rm := newRoomManager(testConfig())

	assert.Equal(t, "de", rm.create("de").language)
	assert.Equal(t, "en", rm.create("martian").language)
	assert.Equal(t, "en", rm.create("").language)
}

func TestShutdownFreesCode(t *testing.T) {
	t.Parallel()

	rm := newRoomManager(testConfig())
	room := rm.create("")
	code := room.code

	room.quit <- struct{}{}

	require.Eventually(t, func() bool {
		_, ok := rm.get(code)
		return !ok
	}, time.Second, 10*time.Millisecond)

	assert.Zero(t, rm.count())
}

func TestLastDisconnectDestroysRoom(t *testing.T) {
	t.Parallel()

	rm := newRoomManager(testConfig())
	room := rm.create("")

	alice := testClient("a")
	require.True(t, room.enqueueRegister(alice))
	require.True(t, room.enqueue(room.joins, inbound{client: alice, msg: ClientMessage{Type: "join", Name: "Alice"}}))

	room.enqueueUnregister(alice)

	require.Eventually(t, func() bool {
		return rm.count() == 0
	}, time.Second, 10*time.Millisecond, "an emptied room must leave the registry")

	select {
	case <-room.done:
	default:
		t.Fatal("room goroutine still running after its last player left")
	}
}

func TestReaperEndsIdleRooms(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.sessionTimeout = 50 * time.Millisecond

	rm := newRoomManager(cfg)
	rm.create("")
	rm.create("")

	require.Eventually(t, func() bool {
		return rm.count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomActorFlow(t *testing.T) {
	t.Parallel()

	rm := newRoomManager(testConfig())
	room := rm.create("")

	alice := testClient("a")
	bob := testClient("b")

	require.True(t, room.enqueueRegister(alice))
	require.True(t, room.enqueue(room.joins, inbound{client: alice, msg: ClientMessage{Type: "join", Name: "Alice"}}))
	require.True(t, room.enqueueRegister(bob))
	require.True(t, room.enqueue(room.joins, inbound{client: bob, msg: ClientMessage{Type: "join", Name: "Bob"}}))

	state := awaitMessage[RoomStateMessage](t, bob, func(m RoomStateMessage) bool {
		return len(m.Players) == 2
	})
	assert.Equal(t, "a", state.HostID)

	require.True(t, room.enqueue(room.starts, inbound{client: alice, msg: ClientMessage{Type: "start_round", Duration: 30}}))

	state = awaitMessage[RoomStateMessage](t, bob, func(m RoomStateMessage) bool {
		return m.Phase == "playing"
	})
	assert.Equal(t, 1, state.Round)
	assert.Equal(t, 30, state.Duration)
	assert.NotEmpty(t, state.Letter)
	assert.NotEmpty(t, state.Deadline)

	require.True(t, room.enqueue(room.submits, inbound{client: alice, msg: ClientMessage{Type: "submit_answers", Answers: []string{"Athens", "Austria", "Ant"}}}))
	require.True(t, room.enqueue(room.submits, inbound{client: bob, msg: ClientMessage{Type: "submit_answers", Answers: []string{"athens", "Belgium", ""}}}))

	scores := awaitMessage[ScoresUpdateMessage](t, bob, func(ScoresUpdateMessage) bool {
		return true
	})
	require.Len(t, scores.Results, 2)
	assert.Equal(t, 50, scores.Results[0].RoundPoints)
	assert.Equal(t, 30, scores.Results[1].RoundPoints)

	state = awaitMessage[RoomStateMessage](t, bob, func(m RoomStateMessage) bool {
		return m.Phase == "review"
	})
	assert.Empty(t, state.Deadline)

	room.enqueueUnregister(alice)
	room.enqueueUnregister(bob)

	require.Eventually(t, func() bool {
		return rm.count() == 0
	}, time.Second, 10*time.Millisecond)
}

// awaitMessage reads a client's inbox until a message of type T
// matching the predicate arrives.
func awaitMessage[T any](t *testing.T, c *Client, match func(T) bool) T {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				t.Fatal("client channel closed while waiting")
			}
			if m, ok := msg.(T); ok && match(m) {
				return m
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}
