package domain

import (
	apperrors "github.com/allisson/trustguard/internal/errors"
)

var (
	// ErrSignatureInvalid indicates an audit log signature verification failure,
	// meaning the entry was tampered with or signed under a different key.
	ErrSignatureInvalid = apperrors.New("audit log signature verification failed")
)
