package validation

import (
	"fmt"
	"net/http"
)

// ParseMultipart caps the request body at maxSize and parses the multipart
// form. Going over the limit makes the server stop reading, which browsers
// report as a reset connection.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return fmt.Errorf("%w: failed to parse multipart form", ErrPayloadTooLarge)
	}
	return nil
}

// FormatSizeMB converts bytes to whole megabytes for messages.
func FormatSizeMB(bytes int64) int64 {
	return bytes >> 20
}
