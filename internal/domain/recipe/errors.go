package recipe

import "errors"

// Domain errors for recipe set handling

var (
	ErrEmptySetID    = errors.New("recipe set id must not be empty")
	ErrTitleNotFound = errors.New("no recipe with that title in the set")
)
