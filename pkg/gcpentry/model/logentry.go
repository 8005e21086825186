package model

import (
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"
)

// Timestamp is the protobuf-JSON form of a point in time.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// MonitoredResource according to https://cloud.google.com/logging/docs/reference/v2/rest/v2/MonitoredResource
type MonitoredResource struct {
	Type   string            `json:"type,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// LogEntry according to https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry
//
// Exactly one of TextPayload and JsonPayload is set for entries that carry a
// payload; metadata-only entries leave both empty. Serialization always
// populates Timestamp.
type LogEntry struct {
	Timestamp      *Timestamp         `json:"timestamp,omitempty"`
	InsertId       string             `json:"insertId,omitempty"`
	Severity       string             `json:"severity,omitempty"`
	TextPayload    string             `json:"textPayload,omitempty"`
	JsonPayload    *structpb.Struct   `json:"jsonPayload,omitempty"`
	Labels         map[string]string  `json:"labels,omitempty"`
	Resource       *MonitoredResource `json:"resource,omitempty"`
	Trace          string             `json:"trace,omitempty"`
	SpanId         string             `json:"spanId,omitempty"`
	TraceSampled   bool               `json:"traceSampled,omitempty"`
	HttpRequest    *HttpRequest       `json:"httpRequest,omitempty"`
	Operation      *Operation         `json:"operation,omitempty"`
	SourceLocation *SourceLocation    `json:"sourceLocation,omitempty"`

	// Payload names the wire field the API populated for this record,
	// "textPayload" or "jsonPayload". Set on responses only.
	Payload string `json:"-"`
}

// MarshalJSON renders JsonPayload as the plain mapping it represents instead
// of the proto struct's internal layout.
func (e *LogEntry) MarshalJSON() ([]byte, error) {
	type alias LogEntry
	shadow := struct {
		*alias
		JsonPayload map[string]any `json:"jsonPayload,omitempty"`
	}{alias: (*alias)(e)}
	if e.JsonPayload != nil {
		shadow.JsonPayload = e.JsonPayload.AsMap()
	}
	return json.Marshal(shadow)
}
