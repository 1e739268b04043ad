package game

import "fmt"

// ErrPlayerExists means a player with the same name already is in the game.
var ErrPlayerExists = fmt.Errorf("player exists")

// ErrNotReady means Start was called before the start condition held.
var ErrNotReady = fmt.Errorf("not enough players")

// StageError means the operation is not valid in the game's current stage.
type StageError struct {
	Stage Stage
}

func (e *StageError) Error() string { return "invalid operation for stage " + string(e.Stage) }

// MoveError means the move itself was against the rules.
type MoveError struct {
	Reason string
}

func (e *MoveError) Error() string { return "invalid move: " + e.Reason }

// PlayerError means the named player cannot move at the moment.
type PlayerError struct {
	Player string
}

func (e *PlayerError) Error() string { return "player " + e.Player + " cannot move at the moment" }
