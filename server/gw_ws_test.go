package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestWS_pushesClocks(t *testing.T) {
	r := newTestRouter(time.Second)
	ts := httptest.NewServer(r)
	defer ts.Close()

	gameId := createC4(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + ts.URL[len("http"):] + "/api/" + gameId + "/updates"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// mutations arrive as clock messages
	join(t, r, gameId, "Alice")

	var msg struct {
		Clock int `json:"clock"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, 1, msg.Clock)

	join(t, r, gameId, "Bob")
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, 2, msg.Clock)
}

func TestWS_unknownGame(t *testing.T) {
	r := newTestRouter(time.Second)
	ts := httptest.NewServer(r)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	url := "ws" + ts.URL[len("http"):] + "/api/game_ZZZZZZZ/updates"
	_, rep, err := websocket.Dial(ctx, url, nil)
	require.Error(t, err)
	if rep != nil {
		assert.Equal(t, 404, rep.StatusCode)
	}
}
