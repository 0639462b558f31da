package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("concurrent modification")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAuth                = errors.New("authentication failed")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailInUse          = errors.New("email already in use")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrUploadFailed        = errors.New("upload failed")
	ErrUnsupportedFormat   = errors.New("unsupported format")
)
