package loader

import "errors"

var (
	// ErrSourceUnreadable is returned when the source cannot be opened or
	// pre-scanned. No rows are loaded.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrParseFailure is returned when a batch cannot be parsed. The failing
	// batch is discarded and the load stops.
	ErrParseFailure = errors.New("parse failure")
)

// IsSourceUnreadable reports whether err is an open or pre-scan failure.
func IsSourceUnreadable(err error) bool {
	return errors.Is(err, ErrSourceUnreadable)
}

// IsParseFailure reports whether err is a batch parse failure.
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrParseFailure)
}
