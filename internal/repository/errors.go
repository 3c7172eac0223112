package repository

import "errors"

// ErrInvalidID is returned for identifiers that are not a canonical
// 24-character hex ObjectID. No query is issued for them.
var ErrInvalidID = errors.New("invalid identifier")
