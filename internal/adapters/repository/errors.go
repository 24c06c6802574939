package repository

import "errors"

// Sentinel kinds for dataset errors.
var (
	// ErrDataLoad marks a dataset that is absent, unreadable or malformed.
	ErrDataLoad = errors.New("dataset load failed")
	// ErrMissingCollection marks a document without one of the required
	// top-level collections. It is always wrapped together with ErrDataLoad.
	ErrMissingCollection = errors.New("missing collection")
)
