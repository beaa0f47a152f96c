package models

import (
	"errors"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrUnsupportedFormat   = errors.New("unsupported format")
)
