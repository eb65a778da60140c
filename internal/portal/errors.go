package portal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidItem marks submissions rejected before anything is stored.
var ErrInvalidItem = errors.New("invalid item")

// ErrPersistence marks a failed call to the item or image store.
var ErrPersistence = errors.New("persistence failure")

// MatchFailure is a candidate whose status update failed.
type MatchFailure struct {
	ID      string `json:"id"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

// PartialMatchError reports a found item that was saved while one or more
// of its candidate updates failed. Applied updates are not rolled back.
type PartialMatchError struct {
	FoundID string
	Applied []string
	Failed  []MatchFailure
}

func (e *PartialMatchError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = f.ID
	}
	return fmt.Sprintf("found item %s saved, %d of %d match updates failed: %s",
		e.FoundID, len(e.Failed), len(e.Failed)+len(e.Applied), strings.Join(ids, ", "))
}

// Unwrap returns the underlying update errors.
func (e *PartialMatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}
