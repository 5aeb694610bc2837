package jwpub

import "errors"

var (
	// ErrArchive indicates a malformed or unreadable container at
	// either nesting level.
	ErrArchive = errors.New("jwpub: invalid archive")

	// ErrMissingEntry indicates an expected named entry is absent
	// from a container.
	ErrMissingEntry = errors.New("jwpub: missing archive entry")
)
