// Package common defines sentinel errors shared across the service,
// repository, and transport layers. Callers match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Authentication errors. Inactive accounts are reported separately from
	// bad credentials so the transport can map them to a different status.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")

	// Token errors. Expired tokens are distinguished from malformed or
	// unsigned ones.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Blob storage errors.
	ErrInvalidFileType = errors.New("file type not allowed")
	ErrFileTooLarge    = errors.New("file too large")
)
