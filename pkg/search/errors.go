package search

import "errors"

// ErrSearchDisabled is returned when search is switched off
var ErrSearchDisabled = errors.New("Search is disabled")

// InvalidSearchError reports a problem with the query itself. Its message is
// shown to the user as is.
type InvalidSearchError struct {
	Message string
}

func (e *InvalidSearchError) Error() string {
	return e.Message
}

// IsInvalidSearch reports whether err is an InvalidSearchError
func IsInvalidSearch(err error) bool {
	var target *InvalidSearchError
	return errors.As(err, &target)
}

// UnavailableMessage is shown when the index cannot be reached
const UnavailableMessage = "The search service is currently not running, and we've been notified of the problem. Please try again later"
