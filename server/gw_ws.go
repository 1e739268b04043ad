package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/undeconstructed/gamehub/hub"
)

// updatesHandler is the websocket gateway. It pushes the instance clock to
// the client each time it advances, as {"clock":n} messages; mutations that
// land between two pushes arrive as one message with the latest clock. State still gets
// read over the REST side; this is only the wake-up signal, for clients
// that would otherwise chain wait-for-update calls.
type updatesHandler struct {
	hub *hub.Hub
	log zerolog.Logger
}

func (ch *updatesHandler) serveWS(c *gin.Context) {
	raw := c.Param("game_id")
	id, ok := hub.ParseGameId(raw)
	if !ok {
		c.String(400, "Path deserialize error: invalid game id %q", raw)
		return
	}
	if _, err := ch.hub.Get(id); err != nil {
		c.String(404, "%v", err)
		return
	}

	log := ch.log.With().Str("game", string(id)).Str("client", c.Request.RemoteAddr).Logger()
	log.Info().Msg("connecting")

	socket, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Info().Err(err).Msg("websocket accept error")
		return
	}
	defer socket.Close(websocket.StatusInternalError, "the sky is falling")

	ctx := c.Request.Context()

	// swallow incoming frames, and notice the close
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := socket.Read(readCtx); err != nil {
				return
			}
		}
	}()

	since := 0
	for readCtx.Err() == nil {
		clock, err := ch.hub.WaitForUpdate(readCtx, id, &since)
		if err != nil {
			break
		}
		if clock > since {
			since = clock
			if err := wsjson.Write(readCtx, socket, clockRes{Clock: clock}); err != nil {
				break
			}
		}
	}

	log.Info().Msg("client gone")
	socket.Close(websocket.StatusNormalClosure, "bye")
}
