package repository

import "errors"

var (
	// ErrAccessCodeTaken означает, что сгенерированный код доступа уже занят другой викториной.
	ErrAccessCodeTaken = errors.New("access code is already taken")
)
