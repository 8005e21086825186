package model

// Operation according to https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#LogEntryOperation
type Operation struct {
	Id       string `json:"id,omitempty"`       // entries sharing an id belong to the same operation
	Producer string `json:"producer,omitempty"` // id+producer must be globally unique
	First    bool   `json:"first,omitempty"`
	Last     bool   `json:"last,omitempty"`
}
