package gcpentry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logx-go/gcp-entry/pkg/gcpentry/model"
)

func TestNew_AssignsInsertID(t *testing.T) {
	first := New(nil, nil)
	second := New(nil, nil)

	require.NotEmpty(t, first.Metadata.InsertId)
	require.NotEmpty(t, second.Metadata.InsertId)
	assert.NotEqual(t, first.Metadata.InsertId, second.Metadata.InsertId)
	assert.LessOrEqual(t, first.Metadata.InsertId, second.Metadata.InsertId,
		"construction order must be recoverable from the ids")
}

func TestNew_KeepsSuppliedInsertID(t *testing.T) {
	entry := New(&Metadata{InsertId: "x"}, nil)

	assert.Equal(t, "x", entry.Metadata.InsertId)
}

func TestNew_DefaultsTimestampToNow(t *testing.T) {
	before := time.Now()
	entry := New(nil, nil)
	after := time.Now()

	wall, ok := entry.Metadata.Timestamp.Time()
	require.True(t, ok)
	assert.False(t, wall.Before(before))
	assert.False(t, wall.After(after))
}

func TestNew_OverlaysMetadataOntoDefaults(t *testing.T) {
	ts := TimestampString("2020-01-01T00:00:00Z")
	entry := New(&Metadata{
		Severity:  SeverityError,
		Timestamp: ts,
		Labels:    map[string]string{"env": "prod"},
	}, nil)

	assert.Equal(t, SeverityError, entry.Metadata.Severity)
	assert.Equal(t, ts, entry.Metadata.Timestamp)
	assert.Equal(t, map[string]string{"env": "prod"}, entry.Metadata.Labels)
	assert.NotEmpty(t, entry.Metadata.InsertId)
}

func TestEntry_ToJSON_PayloadSelection(t *testing.T) {
	t.Run("structured", func(t *testing.T) {
		entry := New(nil, map[string]any{"a": float64(1)})

		record, err := entry.ToJSON(ToJSONOptions{})
		require.NoError(t, err)

		require.NotNil(t, record.JsonPayload)
		assert.Empty(t, record.TextPayload)
		assert.Equal(t, map[string]any{"a": float64(1)}, record.JsonPayload.AsMap())
		assert.Equal(t, FieldJsonPayload, record.Payload)
		assert.Equal(t, PayloadJSON, entry.PayloadKind())
	})

	t.Run("text", func(t *testing.T) {
		entry := New(nil, "hello")

		record, err := entry.ToJSON(ToJSONOptions{})
		require.NoError(t, err)

		assert.Equal(t, "hello", record.TextPayload)
		assert.Nil(t, record.JsonPayload)
		assert.Equal(t, FieldTextPayload, record.Payload)
		assert.Equal(t, PayloadText, entry.PayloadKind())
	})

	t.Run("unsupported shape sets neither field", func(t *testing.T) {
		entry := New(nil, 42)

		record, err := entry.ToJSON(ToJSONOptions{})
		require.NoError(t, err)

		assert.Empty(t, record.TextPayload)
		assert.Nil(t, record.JsonPayload)
		assert.Empty(t, record.Payload)
		assert.Equal(t, PayloadUnsupported, entry.PayloadKind())
	})
}

func TestEntry_ToJSON_NormalizesTimestamp(t *testing.T) {
	wall := time.Unix(1577836800, 0).Add(1500 * time.Millisecond)
	entry := New(&Metadata{Timestamp: TimestampOf(wall)}, nil)

	record, err := entry.ToJSON(ToJSONOptions{})
	require.NoError(t, err)

	require.NotNil(t, record.Timestamp)
	assert.Equal(t, int64(1577836801), record.Timestamp.Seconds)
	assert.Equal(t, int32(500000000), record.Timestamp.Nanos)
}

func TestEntry_ToJSON_RemoveCircular(t *testing.T) {
	data := map[string]any{"a": "b"}
	data["self"] = data
	entry := New(nil, data)

	_, err := entry.ToJSON(ToJSONOptions{})
	assert.ErrorIs(t, err, ErrCircular)

	record, err := entry.ToJSON(ToJSONOptions{RemoveCircular: true})
	require.NoError(t, err)
	assert.Equal(t, CircularMarker, record.JsonPayload.AsMap()["self"])
}

func TestEntry_ToJSON_CopiesMetadata(t *testing.T) {
	entry := New(&Metadata{
		Severity: SeverityNotice,
		InsertId: "id-1",
		Labels:   map[string]string{"env": "prod"},
		Resource: &model.MonitoredResource{Type: "global"},
		Trace:    "projects/p/traces/t",
		SpanId:   "s",
	}, nil)

	record, err := entry.ToJSON(ToJSONOptions{})
	require.NoError(t, err)

	assert.Equal(t, SeverityNotice, record.Severity)
	assert.Equal(t, "id-1", record.InsertId)
	assert.Equal(t, "projects/p/traces/t", record.Trace)
	assert.Equal(t, "s", record.SpanId)
	assert.Equal(t, "global", record.Resource.Type)

	record.Labels["env"] = "staging"
	assert.Equal(t, "prod", entry.Metadata.Labels["env"], "serialization must not alias the entry's labels")
}

func TestFromAPIResponse_TextPayload(t *testing.T) {
	entry := FromAPIResponse(&model.LogEntry{
		InsertId:    "id-9",
		Severity:    SeverityWarning,
		TextPayload: "boom",
		Payload:     FieldTextPayload,
	})

	assert.Equal(t, "boom", entry.Data)
	assert.Equal(t, "id-9", entry.Metadata.InsertId)
	assert.Equal(t, SeverityWarning, entry.Metadata.Severity)
}

func TestFromAPIResponse_StructuredPayload(t *testing.T) {
	st, err := toStructValue(map[string]any{"a": "b"}, false)
	require.NoError(t, err)

	entry := FromAPIResponse(&model.LogEntry{
		JsonPayload: st,
		Payload:     FieldJsonPayload,
	})

	assert.Equal(t, map[string]any{"a": "b"}, entry.Data)
}

func TestFromAPIResponse_TimestampRoundTrip(t *testing.T) {
	original := &model.LogEntry{
		InsertId:  "rt",
		Timestamp: &model.Timestamp{Seconds: 1577836800, Nanos: 123456789},
	}

	entry := FromAPIResponse(original)

	wall, ok := entry.Metadata.Timestamp.Time()
	require.True(t, ok, "response timestamp must become a wall-clock value")
	assert.Equal(t, int64(1577836800), wall.Unix())
	assert.Equal(t, 123456789, wall.Nanosecond())

	record, err := entry.ToJSON(ToJSONOptions{})
	require.NoError(t, err)
	assert.Equal(t, original.Timestamp.Seconds, record.Timestamp.Seconds)
	assert.Equal(t, original.Timestamp.Nanos, record.Timestamp.Nanos)
}

func TestFromAPIResponse_PresenceFallback(t *testing.T) {
	// records without a discriminator are read by field presence
	entry := FromAPIResponse(&model.LogEntry{TextPayload: "plain"})

	assert.Equal(t, "plain", entry.Data)
}
