package core

import "errors"

// ErrorKind groups domain errors by how a caller should react.
type ErrorKind int

const (
	// KindValidation means the input was malformed; retry with different input.
	KindValidation ErrorKind = iota
	// KindAuthorization means the caller is not allowed to do this.
	KindAuthorization
	// KindConflict means the input was well-formed but clashes with room state.
	KindConflict
	// KindUnavailable means the coordinator is not running.
	KindUnavailable
)

// Error codes for domain errors.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeInvalidRoom     = "invalid_room"
	ErrCodeInvalidPosition = "invalid_position"
	ErrCodeMissingToken    = "missing_token"
	ErrCodeUnknownToken    = "unknown_token"
	ErrCodeWrongRoom       = "wrong_room"
	ErrCodeNotYourTurn     = "not_your_turn"
	ErrCodeNotPlaying      = "not_playing"
	ErrCodeCellOccupied    = "cell_occupied"
	ErrCodeIllegalMove     = "illegal_move"
	ErrCodeUnavailable     = "unavailable"
	ErrCodeInternal        = "internal"
)

// CoreError wraps a kind, a code and a human-readable message.
type CoreError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// Is matches on code so wrapped sentinels compare equal.
func (e *CoreError) Is(target error) bool {
	var other *CoreError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func coreError(kind ErrorKind, code, msg string) *CoreError {
	return &CoreError{Kind: kind, Code: code, Message: msg}
}

var (
	ErrBadRequest      = coreError(KindValidation, ErrCodeBadRequest, "bad request")
	ErrInvalidRoom     = coreError(KindValidation, ErrCodeInvalidRoom, "room must be 1..4")
	ErrInvalidPosition = coreError(KindValidation, ErrCodeInvalidPosition, "position must be a1..h8")
	ErrMissingToken    = coreError(KindAuthorization, ErrCodeMissingToken, "session token required")
	ErrUnknownToken    = coreError(KindAuthorization, ErrCodeUnknownToken, "unknown session token")
	ErrWrongRoom       = coreError(KindAuthorization, ErrCodeWrongRoom, "session belongs to another room")
	ErrNotYourTurn     = coreError(KindAuthorization, ErrCodeNotYourTurn, "not your turn")
	ErrNotPlaying      = coreError(KindConflict, ErrCodeNotPlaying, "game is not in progress")
	ErrCellOccupied    = coreError(KindConflict, ErrCodeCellOccupied, "cell is occupied")
	ErrIllegalMove     = coreError(KindConflict, ErrCodeIllegalMove, "move flips nothing")
	ErrUnavailable     = coreError(KindUnavailable, ErrCodeUnavailable, "room coordinator is not running")
	ErrInternal        = coreError(KindUnavailable, ErrCodeInternal, "internal error")
)

// AsCoreError extracts a *CoreError from err, if any.
func AsCoreError(err error) (*CoreError, bool) {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
