package client

import (
	"errors"

	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is the shared sentinel so callers need only one check.
	ErrUnauthorized = common.ErrUnauthorized
)
