package reconstruction

import "github.com/pkg/errors"

// Errors
var (
	ErrInvalidInput = errors.New("invalid particle input")
	ErrAlreadyBuilt = errors.New("fibers already reconstructed from this store")
)
