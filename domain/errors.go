package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers classify with errors.Is; the HTTP boundary maps
// each sentinel to a status code. Both conflict variants satisfy
// errors.Is(err, ErrConflict).
var (
	ErrInvalid      = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")

	ErrAlreadySubscribed = fmt.Errorf("%w: already subscribed", ErrConflict)
	ErrSlugTaken         = fmt.Errorf("%w: slug already in use", ErrConflict)
)
