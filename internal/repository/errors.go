package repository

import "gorm.io/gorm"

// ErrNotFound is returned by every store when a record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound
