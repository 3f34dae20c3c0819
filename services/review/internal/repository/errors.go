package repository

import "errors"

// ErrDuplicateKey is returned when an insert violates the composite
// (product_id, review_id) unique index.
var ErrDuplicateKey = errors.New("duplicate key violation")
