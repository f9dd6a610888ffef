package dataset

import (
	"context"
	"errors"
)

var (
	// ErrNoData means the remote store answered with zero rows.
	ErrNoData = errors.New("remote store returned no certification records")
	// ErrUnmappable means every row lacked its joined sensor or country.
	ErrUnmappable = errors.New("no remote certification row could be mapped")
	// ErrClosed is returned by Sync after the store was torn down.
	ErrClosed = errors.New("dataset store closed")
	// ErrAlreadySynced is returned by every Sync call after the first.
	ErrAlreadySynced = errors.New("dataset sync already attempted")
)

// UserMessage turns a sync failure into the text shown in the widget.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoData):
		return "No certification records returned from the remote store yet."
	case errors.Is(err, ErrUnmappable):
		return "We could not map remote certification data with the current schema."
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out waiting for the remote store."
	}
	return err.Error()
}
