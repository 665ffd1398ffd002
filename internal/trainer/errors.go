package trainer

import "errors"

var (
	// ErrEmptyPool is returned when no spot matches the active filter.
	ErrEmptyPool = errors.New("no spots match the current filter")
	// ErrNotAwaiting is returned when answering without a pending drill.
	ErrNotAwaiting = errors.New("no drill is awaiting an answer")
	// ErrNotAnswered is returned when rating before answering.
	ErrNotAnswered = errors.New("drill has not been answered")
	// ErrPendingRating is returned when a new drill is requested before rating the last one.
	ErrPendingRating = errors.New("last drill has not been rated")
	// ErrIllegalAction is returned for actions the spot does not offer.
	ErrIllegalAction = errors.New("action not available in this spot")
)
