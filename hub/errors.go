package hub

import "fmt"

// Error codes, for mapping to transport statuses.
const (
	CodeGameNotFound    = "GAMENOTFOUND"
	CodeSessionNotFound = "SESSIONNOTFOUND"
	CodeBadUsername     = "BADUSERNAME"
	CodeNotStarted      = "NOTSTARTED"
	CodeStarted         = "STARTED"
	CodeEnded           = "ENDED"
	CodeBadMove         = "BADMOVE"
	CodeBadPlayer       = "BADPLAYER"
	CodeBadJSON         = "BADJSON"
)

// Error is any rule or lookup failure the hub surfaces. The message is the
// exact wire form clients pattern-match on, so it is built here and nowhere
// else.
type Error struct {
	Code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// NotFound says whether this error is a missing resource rather than a
// rejected operation.
func (e *Error) NotFound() bool {
	return e.Code == CodeGameNotFound || e.Code == CodeSessionNotFound
}

func errGameNotFound(id GameId) *Error {
	return &Error{CodeGameNotFound, fmt.Sprintf("game %s does not exist", id)}
}

func errSessionNotFound(id SessionId) *Error {
	return &Error{CodeSessionNotFound, fmt.Sprintf("session %s does not exist", id)}
}

func errUsernameTaken(id GameId, name string) *Error {
	return &Error{CodeBadUsername, fmt.Sprintf("invalid username (already in game %s): %s", id, name)}
}

func errUsernameTooShort(name string) *Error {
	return &Error{CodeBadUsername, fmt.Sprintf("invalid username (too short): %s", name)}
}

func errUsernameTooLong(name string) *Error {
	return &Error{CodeBadUsername, fmt.Sprintf("invalid username (longer than 12 characters): %s", name)}
}

func errNotStarted(id GameId) *Error {
	return &Error{CodeNotStarted, fmt.Sprintf("game has not started yet (%s)", id)}
}

func errAlreadyStarted(id GameId) *Error {
	return &Error{CodeStarted, fmt.Sprintf("game has already started (%s)", id)}
}

func errEnded(id GameId) *Error {
	return &Error{CodeEnded, fmt.Sprintf("game %s has already ended (%s)", id, id)}
}

func errBadMove(id GameId, reason string) *Error {
	return &Error{CodeBadMove, fmt.Sprintf("invalid move: %s (%s)", reason, id)}
}

func errCannotMove(id GameId, player string) *Error {
	return &Error{CodeBadPlayer, fmt.Sprintf("player %s cannot move at the moment (%s)", player, id)}
}

func errBadJSON(err error) *Error {
	return &Error{CodeBadJSON, fmt.Sprintf("Json deserialize error: %v", err)}
}
