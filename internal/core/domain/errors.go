package domain

import "errors"

var (
	// ErrSealNotFound ...
	ErrSealNotFound = errors.New("seal not found")
	// ErrSealAlreadyExists ...
	ErrSealAlreadyExists = errors.New("seal already exists")
	// ErrSealAlreadyFinalized is thrown when trying to update a seal that
	// already reached the closed or invalid status.
	ErrSealAlreadyFinalized = errors.New("seal already reached a final status")
	// ErrMissingCloseIntent ...
	ErrMissingCloseIntent = errors.New("no sealed message registered for the seal")
)
