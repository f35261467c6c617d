package catalog

import "errors"

// Catalog errors.
var (
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrLoadCatalog    = errors.New("failed to load catalog")
)
