package validation

import "errors"

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrUnsupportedType is returned when an upload is not a spreadsheet
var ErrUnsupportedType = errors.New("unsupported file type")
