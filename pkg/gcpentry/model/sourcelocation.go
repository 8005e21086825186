package model

// SourceLocation according to https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#LogEntrySourceLocation
type SourceLocation struct {
	File     string `json:"file,omitempty"`
	Line     string `json:"line,omitempty"`     // 1-based, "0" when unavailable
	Function string `json:"function,omitempty"` // e.g. dir/package.func for Go
}
