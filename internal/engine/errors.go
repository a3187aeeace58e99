package engine

import "fmt"

// BelowMinimumError reports that selection could not gather enough
// words to start a session of the requested size. Callers must block
// session start and let the user add words or lower the target.
type BelowMinimumError struct {
	Have    int
	Minimum int
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("only %d words available, need at least %d", e.Have, e.Minimum)
}

// InvalidTransitionError reports an operation attempted in a state
// that does not allow it. This is a programming-contract violation:
// callers log it and refuse the operation rather than panicking.
type InvalidTransitionError struct {
	State State
	Op    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Op, e.State)
}
