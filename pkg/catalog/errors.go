package catalog

import "errors"

// ErrUnknownDataset is returned by Load for a key that names no demo dataset.
var ErrUnknownDataset = errors.New("unknown demo dataset")

// ErrInvalidCatalog wraps every reference-data validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")
