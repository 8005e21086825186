package gcpentry

import (
	"time"

	"github.com/logx-go/gcp-entry/pkg/gcpentry/model"
)

// Metadata carries everything about a log entry except its payload. The
// zero value is valid; New fills in defaults for the timestamp and insert
// id.
type Metadata struct {
	Severity       string
	InsertId       string
	Timestamp      Timestamp
	Labels         map[string]string
	Resource       *model.MonitoredResource
	Trace          string
	SpanId         string
	TraceSampled   bool
	HttpRequest    *model.HttpRequest
	Operation      *model.Operation
	SourceLocation *model.SourceLocation
}

// Entry is one log record: metadata plus a raw payload value. The payload
// is kept as supplied and not inspected until serialization.
type Entry struct {
	Metadata Metadata
	Data     any
}

// New builds an Entry, overlaying the supplied metadata onto defaults. The
// timestamp falls back to the current time, and a missing insert id is
// assigned from the package generator so that entries sharing a timestamp
// still sort in construction order. A caller-supplied insert id is kept
// verbatim and the generator is not consulted.
func New(meta *Metadata, data any) *Entry {
	m := Metadata{Timestamp: TimestampOf(time.Now())}
	if meta != nil {
		m = overlayMetadata(m, *meta)
	}
	if m.InsertId == "" {
		m.InsertId = defaultInsertID()
	}
	return &Entry{Metadata: m, Data: data}
}

// overlayMetadata applies only the fields the caller actually set. Labels
// merge key by key over the defaults; nested blocks are pointers and are
// replaced wholesale.
func overlayMetadata(base, over Metadata) Metadata {
	if over.Severity != "" {
		base.Severity = over.Severity
	}
	if over.InsertId != "" {
		base.InsertId = over.InsertId
	}
	if !over.Timestamp.IsZero() {
		base.Timestamp = over.Timestamp
	}
	if len(over.Labels) > 0 {
		merged := make(map[string]string, len(base.Labels)+len(over.Labels))
		for k, v := range base.Labels {
			merged[k] = v
		}
		for k, v := range over.Labels {
			merged[k] = v
		}
		base.Labels = merged
	}
	if over.Resource != nil {
		base.Resource = over.Resource
	}
	if over.Trace != "" {
		base.Trace = over.Trace
	}
	if over.SpanId != "" {
		base.SpanId = over.SpanId
	}
	if over.TraceSampled {
		base.TraceSampled = over.TraceSampled
	}
	if over.HttpRequest != nil {
		base.HttpRequest = over.HttpRequest
	}
	if over.Operation != nil {
		base.Operation = over.Operation
	}
	if over.SourceLocation != nil {
		base.SourceLocation = over.SourceLocation
	}
	return base
}

// PayloadKind reports how the entry's data will be encoded on the wire.
// Callers that must not lose data can check for PayloadUnsupported before
// serializing, since unsupported shapes produce neither payload field.
func (e *Entry) PayloadKind() PayloadKind {
	return classifyPayload(e.Data)
}

// ToJSONOptions control serialization.
type ToJSONOptions struct {
	// RemoveCircular replaces self-referential values inside a structured
	// payload with CircularMarker instead of failing with ErrCircular.
	RemoveCircular bool
}

// ToJSON converts the entry into the wire record: the metadata is copied
// over, the payload field matching the data's shape is populated, and the
// timestamp is normalized to the seconds/nanos pair. Data outside the
// accepted shapes leaves both payload fields unset. The entry itself is
// not modified.
func (e *Entry) ToJSON(opts ToJSONOptions) (*model.LogEntry, error) {
	out := &model.LogEntry{
		InsertId:       e.Metadata.InsertId,
		Severity:       e.Metadata.Severity,
		Labels:         copyLabels(e.Metadata.Labels),
		Resource:       e.Metadata.Resource,
		Trace:          e.Metadata.Trace,
		SpanId:         e.Metadata.SpanId,
		TraceSampled:   e.Metadata.TraceSampled,
		HttpRequest:    e.Metadata.HttpRequest,
		Operation:      e.Metadata.Operation,
		SourceLocation: e.Metadata.SourceLocation,
	}

	switch data := e.Data.(type) {
	case map[string]any:
		st, err := toStructValue(data, opts.RemoveCircular)
		if err != nil {
			return nil, err
		}
		out.JsonPayload = st
		out.Payload = FieldJsonPayload
	case string:
		out.TextPayload = data
		out.Payload = FieldTextPayload
	}

	out.Timestamp = e.Metadata.Timestamp.normalize()

	return out, nil
}

// FromAPIResponse rebuilds an Entry from a record returned by the API. The
// payload is lifted out of the wire field named by the record's payload
// discriminator (falling back to whichever field is populated), structured
// payloads are converted back to plain mappings, and a seconds/nanos
// timestamp is folded back into a wall-clock time on the entry's metadata.
func FromAPIResponse(record *model.LogEntry) *Entry {
	var data any
	switch record.Payload {
	case FieldJsonPayload:
		data = fromStructValue(record.JsonPayload)
	case FieldTextPayload:
		data = record.TextPayload
	default:
		if record.JsonPayload != nil {
			data = fromStructValue(record.JsonPayload)
		} else if record.TextPayload != "" {
			data = record.TextPayload
		}
	}

	meta := &Metadata{
		Severity:       record.Severity,
		InsertId:       record.InsertId,
		Labels:         record.Labels,
		Resource:       record.Resource,
		Trace:          record.Trace,
		SpanId:         record.SpanId,
		TraceSampled:   record.TraceSampled,
		HttpRequest:    record.HttpRequest,
		Operation:      record.Operation,
		SourceLocation: record.SourceLocation,
	}

	entry := New(meta, data)
	if ts := record.Timestamp; ts != nil {
		entry.Metadata.Timestamp = TimestampOf(time.Unix(ts.Seconds, int64(ts.Nanos)).UTC())
	}

	return entry
}

func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}
