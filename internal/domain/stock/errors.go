package stock

import "errors"

var (
	ErrItemNotFound = errors.New("stock item not found")
	ErrItemExists   = errors.New("stock item already exists")
)
