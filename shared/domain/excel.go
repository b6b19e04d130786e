package domain

import "encoding/json"

type ExcelFile struct {
	Id               ExcelId   `json:"id"`
	Filename         string    `json:"filename"`
	UploadedBy       UserId    `json:"uploaded_by,omitempty"`
	UploaderName     string    `json:"uploader_name,omitempty"`
	UploadDate       Timestamp `json:"upload_date"`
	AnalysisComplete bool      `json:"analysis_complete"`
}

// AnalysisResults holds the backend's analysis keyed by result type
// (summary, prediction, trend...). The payloads are opaque to the portal and
// only pretty-printed.
type AnalysisResults struct {
	FileInfo ExcelFile                  `json:"file_info"`
	Results  map[string]json.RawMessage `json:"results"`
}
