package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/undeconstructed/gamehub/game"
)

const maxUsernameLen = 12

// Summary is the listing view of one instance.
type Summary struct {
	GameId      GameId     `json:"game_id"`
	GameType    game.Type  `json:"game_type"`
	Players     []string   `json:"players"`
	Stage       game.Stage `json:"stage"`
	LastUpdated time.Time  `json:"last_updated"`
}

// State is the full read view of one instance.
type State struct {
	Players     []string   `json:"players"`
	Stage       game.Stage `json:"stage"`
	CanMove     []string   `json:"can_move"`
	Winners     []string   `json:"winners"`
	GameName    game.Type  `json:"game_name"`
	LastUpdated time.Time  `json:"last_updated"`
	Payload     any        `json:"payload"`
}

// Instance wraps one game with its hub metadata: sessions, clock, lock,
// notifier. All game access goes through here, under the instance lock.
type Instance struct {
	id   GameId
	game game.Game
	log  zerolog.Logger

	mu          sync.Mutex
	sessions    map[string]SessionId // username -> session
	lastUpdated time.Time
	notifier    *Notifier
}

func newInstance(id GameId, g game.Game, log zerolog.Logger) *Instance {
	return &Instance{
		id:          id,
		game:        g,
		log:         log.With().Str("game", string(id)).Logger(),
		sessions:    map[string]SessionId{},
		lastUpdated: time.Now().UTC(),
		notifier:    NewNotifier(),
	}
}

// Id returns the instance's game id.
func (i *Instance) Id() GameId { return i.id }

// Type returns the instance's game type. Immutable, so no lock.
func (i *Instance) Type() game.Type { return i.game.Type() }

// Clock returns the instance's current clock value.
func (i *Instance) Clock() int { return i.notifier.Clock() }

// Subscribe returns a waiter handle on the instance's notifier.
func (i *Instance) Subscribe() *Subscription { return i.notifier.Subscribe() }

// join adds a player under the instance lock. The session id has already
// been minted by the hub; it is recorded here only if the join sticks.
func (i *Instance) join(username string, sid SessionId) error {
	if len(username) == 0 {
		return errUsernameTooShort(username)
	}
	if len(username) > maxUsernameLen {
		return errUsernameTooLong(username)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.game.AddPlayer(username); err != nil {
		return i.mapGameError(err, username)
	}
	i.sessions[username] = sid

	if i.game.Ready() {
		if err := i.game.Start(); err != nil {
			// AddPlayer succeeded, so this cannot happen
			i.log.Error().Err(err).Msg("start failed")
		} else {
			i.log.Info().Msg("game started")
		}
	}

	clock := i.touch()
	i.log.Info().Str("username", username).Int("clock", clock).Msg("player joined")
	return nil
}

// submit applies one move under the instance lock and returns the new clock.
func (i *Instance) submit(username string, payload json.RawMessage) (int, error) {
	mv, err := game.DecodeMove(i.game.Type(), payload)
	if err != nil {
		return 0, errBadJSON(err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.game.Submit(username, mv); err != nil {
		return 0, i.mapGameError(err, username)
	}

	clock := i.touch()
	i.log.Info().Str("username", username).Int("clock", clock).Msg("move played")
	if i.game.Stage() == game.StageEnded {
		i.log.Info().Strs("winners", i.game.Winners()).Msg("game ended")
	}
	return clock, nil
}

// Summary snapshots the listing view.
func (i *Instance) Summary() Summary {
	i.mu.Lock()
	defer i.mu.Unlock()
	return Summary{
		GameId:      i.id,
		GameType:    i.game.Type(),
		Players:     i.game.Players(),
		Stage:       i.game.Stage(),
		LastUpdated: i.lastUpdated,
	}
}

// State snapshots the full view, including the game payload.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return State{
		Players:     i.game.Players(),
		Stage:       i.game.Stage(),
		CanMove:     i.game.CanMove(),
		Winners:     i.game.Winners(),
		GameName:    i.game.Type(),
		LastUpdated: i.lastUpdated,
		Payload:     i.game.Snapshot(),
	}
}

// touch records a successful mutation: clock forward, timestamp, waiters
// woken. Callers hold the instance lock.
func (i *Instance) touch() int {
	i.lastUpdated = time.Now().UTC()
	return i.notifier.Bump()
}

// mapGameError turns game package errors into wire errors carrying this
// instance's id.
func (i *Instance) mapGameError(err error, username string) *Error {
	var stageErr *game.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case game.StageWaiting:
			return errNotStarted(i.id)
		case game.StageInProgress:
			return errAlreadyStarted(i.id)
		default:
			return errEnded(i.id)
		}
	}
	var moveErr *game.MoveError
	if errors.As(err, &moveErr) {
		return errBadMove(i.id, moveErr.Reason)
	}
	var playerErr *game.PlayerError
	if errors.As(err, &playerErr) {
		return errCannotMove(i.id, playerErr.Player)
	}
	if errors.Is(err, game.ErrPlayerExists) {
		return errUsernameTaken(i.id, username)
	}
	// no other kinds exist, but keep the surface sane
	return errBadMove(i.id, err.Error())
}
