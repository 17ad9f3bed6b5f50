package rostersync

import "errors"

var (
	ErrNotConfigured = errors.New("roster directory api key is not configured")
	ErrUpstream      = errors.New("roster directory request failed")
)
