package fixture

import "errors"

var (
	ErrUnknownGenerator = errors.New("unknown generator")
	ErrInvalidCount     = errors.New("entry count must not be negative")
)
