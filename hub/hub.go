package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/undeconstructed/gamehub/game"
)

// DefaultPollTimeout bounds how long a wait-for-update can hang. It has to
// sit under typical HTTP idle timeouts with some margin.
const DefaultPollTimeout = 30 * time.Second

type sessionRef struct {
	game GameId
	user string
}

// Hub is the process-wide registry of live game instances. The hub lock
// covers only the maps; per-game work happens under each instance's own
// lock, and the two are never held the other way around.
type Hub struct {
	log         zerolog.Logger
	pollTimeout time.Duration

	mu       sync.Mutex
	games    map[GameId]*Instance
	sessions map[SessionId]sessionRef
}

// NewHub makes an empty hub.
func NewHub(log zerolog.Logger, pollTimeout time.Duration) *Hub {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &Hub{
		log:         log,
		pollTimeout: pollTimeout,
		games:       map[GameId]*Instance{},
		sessions:    map[SessionId]sessionRef{},
	}
}

// Create makes a fresh instance of the given game type and registers it.
func (h *Hub) Create(t game.Type) GameId {
	g := game.New(t)

	h.mu.Lock()
	defer h.mu.Unlock()

	id := newGameId()
	for _, exists := h.games[id]; exists; _, exists = h.games[id] {
		id = newGameId()
	}
	h.games[id] = newInstance(id, g, h.log)

	h.log.Info().Str("game", string(id)).Str("type", string(t)).Msg("game created")
	return id
}

// Get looks up an instance handle.
func (h *Hub) Get(id GameId) (*Instance, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	inst, ok := h.games[id]
	if !ok {
		return nil, errGameNotFound(id)
	}
	return inst, nil
}

// SessionLookup resolves a session to its game and username.
func (h *Hub) SessionLookup(sid SessionId) (GameId, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ref, ok := h.sessions[sid]
	if !ok {
		return "", "", errSessionNotFound(sid)
	}
	return ref.game, ref.user, nil
}

// Join adds a player to a game and hands back their session id.
func (h *Hub) Join(id GameId, username string) (SessionId, error) {
	inst, err := h.Get(id)
	if err != nil {
		return "", err
	}

	sid := h.reserveSession(id, username)
	if err := inst.join(username, sid); err != nil {
		h.releaseSession(sid)
		return "", err
	}
	return sid, nil
}

// Submit plays a move identified by session, on the named game. The session
// must belong to that same game.
func (h *Hub) Submit(id GameId, sid SessionId, payload json.RawMessage) (int, error) {
	inst, err := h.Get(id)
	if err != nil {
		return 0, err
	}

	gid, username, err := h.SessionLookup(sid)
	if err != nil {
		return 0, err
	}
	if gid != id {
		return 0, errSessionNotFound(sid)
	}

	return inst.submit(username, payload)
}

// WaitForUpdate blocks until the instance's clock strictly exceeds since, or
// the poll timeout passes, or ctx ends. A nil since means "from now". The
// returned value is always the then-current clock.
func (h *Hub) WaitForUpdate(ctx context.Context, id GameId, since *int) (int, error) {
	inst, err := h.Get(id)
	if err != nil {
		return 0, err
	}

	sub := inst.Subscribe()
	s := inst.Clock()
	if since != nil {
		s = *since
	}
	return sub.Wait(ctx, s, h.pollTimeout), nil
}

// List filters, sorts and paginates summaries of every game. The count is
// taken after filtering, before pagination.
func (h *Hub) List(opts SearchOptions) ([]Summary, int) {
	h.mu.Lock()
	insts := make([]*Instance, 0, len(h.games))
	for _, inst := range h.games {
		insts = append(insts, inst)
	}
	h.mu.Unlock()

	// summaries are taken outside the hub lock, one instance at a time
	summaries := make([]Summary, 0, len(insts))
	for _, inst := range insts {
		summaries = append(summaries, inst.Summary())
	}

	return Search(summaries, opts)
}

// reserveSession mints a unique session id and points it at a game.
func (h *Hub) reserveSession(id GameId, username string) SessionId {
	h.mu.Lock()
	defer h.mu.Unlock()
	sid := newSessionId()
	for _, exists := h.sessions[sid]; exists; _, exists = h.sessions[sid] {
		sid = newSessionId()
	}
	h.sessions[sid] = sessionRef{game: id, user: username}
	return sid
}

func (h *Hub) releaseSession(sid SessionId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sid)
}
