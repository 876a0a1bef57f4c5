package api

import "errors"

var (
	errNoSession      = errors.New("no session token")
	errInvalidSession = errors.New("invalid session")
)
