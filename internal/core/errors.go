package core

import "errors"

var (
	// ErrProvider marks a failed or timed out completion/embedding call.
	ErrProvider = errors.New("provider error")
	// ErrParse marks extraction output that is not the expected structure.
	ErrParse = errors.New("parse error")
	// ErrStore marks an unreadable or corrupt cache or chat document.
	ErrStore = errors.New("store error")
)
