package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// api is a thin client over the hub's HTTP surface.
type api struct {
	base string
	http *http.Client
}

func newAPI(base string) *api {
	return &api{
		base: base,
		// no client timeout; wait-for-update legitimately hangs
		http: &http.Client{},
	}
}

type gameState struct {
	Players     []string        `json:"players"`
	Stage       string          `json:"stage"`
	CanMove     []string        `json:"can_move"`
	Winners     []string        `json:"winners"`
	GameName    string          `json:"game_name"`
	LastUpdated time.Time       `json:"last_updated"`
	Payload     json.RawMessage `json:"payload"`
}

type gameSummary struct {
	GameId      string    `json:"game_id"`
	GameType    string    `json:"game_type"`
	Players     []string  `json:"players"`
	Stage       string    `json:"stage"`
	LastUpdated time.Time `json:"last_updated"`
}

type listRes struct {
	GameSummaries []gameSummary `json:"game_summaries"`
	NumberOfGames int           `json:"number_of_games"`
}

func (a *api) CreateGame(gameType string) (string, error) {
	var res struct {
		GameId string `json:"game_id"`
	}
	err := a.post("/api/create-game", map[string]string{"game_type": gameType}, &res)
	return res.GameId, err
}

func (a *api) JoinGame(gameId, username string) (string, error) {
	var res struct {
		SessionId string `json:"session_id"`
	}
	err := a.post("/api/"+gameId+"/join-game", map[string]string{"username": username}, &res)
	return res.SessionId, err
}

func (a *api) GetState(gameId string) (*gameState, error) {
	res := &gameState{}
	err := a.get("/api/"+gameId+"/get-state", res)
	return res, err
}

func (a *api) ListGames(page int) (*listRes, error) {
	res := &listRes{}
	err := a.get("/api/list-games?page="+strconv.Itoa(page), res)
	return res, err
}

func (a *api) SubmitMove(gameId, session, gameType, value string) (int, error) {
	payload := map[string]any{"game_type": gameType}
	switch gameType {
	case "connect_4":
		col, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("bad column: %s", value)
		}
		payload["column"] = col
	case "snake":
		payload["direction"] = value
	default:
		return 0, fmt.Errorf("unknown game type: %s", gameType)
	}

	var res struct {
		Clock int `json:"clock"`
	}
	err := a.post("/api/"+gameId+"/submit-move", map[string]any{
		"session_id": session,
		"payload":    payload,
	}, &res)
	return res.Clock, err
}

func (a *api) WaitForUpdate(gameId string, since int) (int, error) {
	var res struct {
		Clock int `json:"clock"`
	}
	err := a.get("/api/"+gameId+"/wait-for-update?since="+strconv.Itoa(since), &res)
	return res.Clock, err
}

func (a *api) get(path string, out any) error {
	rep, err := a.http.Get(a.base + path)
	if err != nil {
		return err
	}
	return a.decode(rep, out)
}

func (a *api) post(path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	rep, err := a.http.Post(a.base+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	return a.decode(rep, out)
}

func (a *api) decode(rep *http.Response, out any) error {
	defer rep.Body.Close()
	data, err := io.ReadAll(rep.Body)
	if err != nil {
		return err
	}
	if rep.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", string(data))
	}
	return json.Unmarshal(data, out)
}
