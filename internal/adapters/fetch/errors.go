package fetch

import (
	"errors"
)

// Sentinel kinds for collaborator fetch errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	ErrDecode           = errors.New("decode upstream response failed")
)
