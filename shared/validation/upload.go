package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SpreadsheetExtensions are the file types the backend analyses.
var SpreadsheetExtensions = []string{".xls", ".xlsx"}

// spreadsheetMimes also admits the containers of both formats: short or
// unusual workbooks are only recognised as zip or OLE storage.
var spreadsheetMimes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-excel",
	"application/zip",
	"application/x-ole-storage",
}

// Spreadsheet checks an uploaded workbook by name, size and content. The
// file is rewound before returning.
func Spreadsheet(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(SpreadsheetExtensions, ext) {
		return fmt.Errorf("%w: only %s files can be analysed", ErrUnsupportedType, strings.Join(SpreadsheetExtensions, " and "))
	}
	if header.Size > maxSize {
		return fmt.Errorf("%w: the file is larger than %d MB", ErrPayloadTooLarge, FormatSizeMB(maxSize))
	}

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}
	for m := mt; m != nil; m = m.Parent() {
		if slices.Contains(spreadsheetMimes, m.String()) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s does not look like a spreadsheet", ErrUnsupportedType, header.Filename)
}
