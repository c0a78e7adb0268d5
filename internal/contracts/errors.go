package contracts

import "errors"

// ErrNotFound is returned by repositories when a lookup has no row
var ErrNotFound = errors.New("not found")
