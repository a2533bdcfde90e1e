package key

import "errors"

// ErrInvalidLength indicates that a buffer does not have the size of the
// canonical encoding it is supposed to hold
var ErrInvalidLength = errors.New("invalid encoding length")
