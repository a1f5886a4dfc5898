package domain

import "errors"

var (
	ErrInvalidKind    = errors.New("invalid_kind")
	ErrNotFound       = errors.New("document_not_found")
	ErrAssemblyFailed = errors.New("assembly_failed")
)
