package domain

import "errors"

var (
	ErrSequenceUnavailable = errors.New("sequence_unavailable")
	ErrInvalidKind         = errors.New("invalid_kind")
	ErrInvalidPrefix       = errors.New("invalid_prefix")
)
