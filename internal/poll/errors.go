package poll

import "errors"

var (
	ErrNoActivePoll      = errors.New("no active poll")
	ErrPollAlreadyActive = errors.New("another poll is already active")
	ErrInvalidOption     = errors.New("invalid option")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrStoreCorrupt      = errors.New("poll store is corrupt")
	ErrRosterUnavailable = errors.New("roster unavailable")
	ErrNoTargetChat      = errors.New("poll has no target chat")
	ErrDurationFormat    = errors.New("duration must look like 30m, 2h or 1d")
	ErrTooFewOptions     = errors.New("at least two options are required")
	ErrDuplicateOption   = errors.New("options must be distinct")
	ErrTooManyOptions    = errors.New("too many options")
	ErrUnparseableChoice = errors.New("choice is not a non-negative integer")
	ErrMalformedOverride = errors.New("override file is malformed")
)

// ValidationError is malformed user input. Dialogues recover from it by
// re-prompting the same state.
type ValidationError struct {
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(input string, err error) error {
	return &ValidationError{Input: input, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
