package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
	ErrRateLimited            = errors.New("rate limited")
	ErrForbidden              = errors.New("forbidden")
	ErrUpstreamServer         = errors.New("upstream server error")
	ErrNetwork                = errors.New("network error")
	ErrValidation             = errors.New("validation error")
	ErrPersistence            = errors.New("persistence error")

	ErrAccountNotFound       = fmt.Errorf("account %w", ErrNotFound)
	ErrRankedAccountNotFound = fmt.Errorf("ranked account %w", ErrNotFound)
	ErrMatchNotFound         = fmt.Errorf("match %w", ErrNotFound)
)
