package store

import "errors"

var (
	// ErrNotFound is returned by FetchOne and FetchFirst when no row matches.
	ErrNotFound = errors.New("no matching row")

	// ErrNonUniqueResult is returned by FetchOne when more than one row matches.
	ErrNonUniqueResult = errors.New("query returned more than one row")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown database driver")
)
