package errors

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrInvalidSquare  = errors.New("square is off the board")
	ErrInvalidFEN     = errors.New("invalid FEN")
	ErrUnknownStorage = errors.New("unknown storage backend")
	ErrInternal       = errors.New("internal error")
)
