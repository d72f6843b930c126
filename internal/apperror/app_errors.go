package apperror

import "errors"

var (
	ErrInvalidBoard        = errors.New("invalid board")
	ErrInvalidCell         = errors.New("invalid cell value")
	ErrInvalidDepth        = errors.New("invalid depth")
	ErrNotDecisionPosition = errors.New("board is not a decision position")
	ErrCatalogNotFound     = errors.New("catalog not found")
	ErrCatalogCorrupt      = errors.New("stored catalog is corrupt")
)
