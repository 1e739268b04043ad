package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/undeconstructed/gamehub/game"
	"github.com/undeconstructed/gamehub/hub"
)

// restHandler is the HTTP/JSON gateway. Success bodies are JSON; error
// bodies are plain text in the exact shapes clients pattern-match on.
type restHandler struct {
	hub     *hub.Hub
	maxBody int64
	log     zerolog.Logger
}

type createGameReq struct {
	GameType string `json:"game_type"`
}

type createGameRes struct {
	GameId hub.GameId `json:"game_id"`
}

type joinGameReq struct {
	Username string `json:"username"`
}

type joinGameRes struct {
	SessionId hub.SessionId `json:"session_id"`
}

type submitMoveReq struct {
	SessionId string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

type clockRes struct {
	Clock int `json:"clock"`
}

type listGamesRes struct {
	GameSummaries []hub.Summary `json:"game_summaries"`
	NumberOfGames int           `json:"number_of_games"`
}

func (rh *restHandler) createGame(c *gin.Context) {
	var req createGameReq
	if !rh.readJSON(c, &req) {
		return
	}
	t, ok := game.ParseType(req.GameType)
	if !ok {
		c.String(http.StatusBadRequest, "Json deserialize error: unknown game_type %q", req.GameType)
		return
	}

	id := rh.hub.Create(t)
	c.JSON(http.StatusOK, createGameRes{GameId: id})
}

func (rh *restHandler) listGames(c *gin.Context) {
	opts := hub.SearchOptions{
		Page:      1,
		SortKey:   hub.ByLastUpdated,
		SortOrder: hub.Desc,
	}

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.String(http.StatusBadRequest, "Query deserialize error: invalid page %q", v)
			return
		}
		opts.Page = n
	}
	if v := c.Query("sort_order"); v != "" {
		o, ok := hub.ParseSortOrder(v)
		if !ok {
			c.String(http.StatusBadRequest, "Query deserialize error: invalid sort_order %q", v)
			return
		}
		opts.SortOrder = o
	}
	if v := c.Query("sort_key"); v != "" {
		k, ok := hub.ParseSortKey(v)
		if !ok {
			c.String(http.StatusBadRequest, "Query deserialize error: invalid sort_key %q", v)
			return
		}
		opts.SortKey = k
	}
	if v := c.Query("game_type"); v != "" {
		t, ok := game.ParseType(v)
		if !ok {
			c.String(http.StatusBadRequest, "Query deserialize error: unknown game_type %q", v)
			return
		}
		opts.GameType = &t
	}
	if v := c.Query("players"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.String(http.StatusBadRequest, "Query deserialize error: invalid players %q", v)
			return
		}
		opts.Players = &n
	}
	if v := c.Query("stage"); v != "" {
		st, ok := game.ParseStage(v)
		if !ok {
			c.String(http.StatusBadRequest, "Query deserialize error: unknown stage %q", v)
			return
		}
		opts.Stage = &st
	}

	summaries, total := rh.hub.List(opts)
	c.JSON(http.StatusOK, listGamesRes{GameSummaries: summaries, NumberOfGames: total})
}

func (rh *restHandler) joinGame(c *gin.Context) {
	id, ok := rh.gameId(c)
	if !ok {
		return
	}
	var req joinGameReq
	if !rh.readJSON(c, &req) {
		return
	}

	sid, err := rh.hub.Join(id, req.Username)
	if err != nil {
		rh.hubError(c, err)
		return
	}
	c.JSON(http.StatusOK, joinGameRes{SessionId: sid})
}

func (rh *restHandler) getState(c *gin.Context) {
	id, ok := rh.gameId(c)
	if !ok {
		return
	}

	inst, err := rh.hub.Get(id)
	if err != nil {
		rh.hubError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst.State())
}

func (rh *restHandler) submitMove(c *gin.Context) {
	id, ok := rh.gameId(c)
	if !ok {
		return
	}
	var req submitMoveReq
	if !rh.readJSON(c, &req) {
		return
	}
	sid, ok := hub.ParseSessionId(req.SessionId)
	if !ok {
		c.String(http.StatusBadRequest, "Json deserialize error: invalid session_id %q", req.SessionId)
		return
	}

	clock, err := rh.hub.Submit(id, sid, req.Payload)
	if err != nil {
		rh.hubError(c, err)
		return
	}
	c.JSON(http.StatusOK, clockRes{Clock: clock})
}

func (rh *restHandler) waitForUpdate(c *gin.Context) {
	id, ok := rh.gameId(c)
	if !ok {
		return
	}
	var since *int
	if v := c.Query("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.String(http.StatusBadRequest, "Query deserialize error: invalid since %q", v)
			return
		}
		since = &n
	}

	clock, err := rh.hub.WaitForUpdate(c.Request.Context(), id, since)
	if err != nil {
		rh.hubError(c, err)
		return
	}
	c.JSON(http.StatusOK, clockRes{Clock: clock})
}

// gameId parses the path segment, or writes the path error.
func (rh *restHandler) gameId(c *gin.Context) (hub.GameId, bool) {
	raw := c.Param("game_id")
	id, ok := hub.ParseGameId(raw)
	if !ok {
		c.String(http.StatusBadRequest, "Path deserialize error: invalid game id %q", raw)
		return "", false
	}
	return id, true
}

// readJSON decodes a bounded request body, or writes the right error.
func (rh *restHandler) readJSON(c *gin.Context, dst any) bool {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, rh.maxBody)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.String(http.StatusBadRequest, "Json payload size is bigger than allowed")
			return false
		}
		c.String(http.StatusBadRequest, "Json deserialize error: %v", err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.String(http.StatusBadRequest, "Json deserialize error: %v", err)
		return false
	}
	return true
}

// hubError maps hub errors onto statuses, keeping their exact messages.
func (rh *restHandler) hubError(c *gin.Context, err error) {
	var herr *hub.Error
	if errors.As(err, &herr) {
		status := http.StatusBadRequest
		if herr.NotFound() {
			status = http.StatusNotFound
		}
		c.String(status, herr.Error())
		return
	}
	rh.log.Error().Err(err).Msg("unexpected error")
	c.String(http.StatusInternalServerError, "internal error")
}
