package gcpentry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/logx-go/commons/pkg/commons"
	"github.com/logx-go/contract/pkg/logx"

	"github.com/logx-go/gcp-entry/pkg/gcpentry/model"
)

var _ logx.Formatter = (*Formatter)(nil)

// NewFormatter returns a logx formatter that renders each record as one
// Cloud Logging entry in wire JSON. Fields beyond the recognized logx and
// gcp:* names end up in the structured payload together with the message;
// a record without extra fields carries the message as its text payload.
func NewFormatter() *Formatter {
	return &Formatter{
		logLevelToSeverityMap: map[int]string{
			logx.LogLevelDebug:   SeverityDebug,
			logx.LogLevelInfo:    SeverityInfo,
			logx.LogLevelNotice:  SeverityNotice,
			logx.LogLevelWarning: SeverityWarning,
			logx.LogLevelError:   SeverityError,
			logx.LogLevelFatal:   SeverityAlert,
			logx.LogLevelPanic:   SeverityEmergency,
		},
		logLevelDefault: logx.LogLevelInfo,
	}
}

type Formatter struct {
	logLevelToSeverityMap map[int]string
	logLevelDefault       int
	projectID             string
}

func (f *Formatter) clone() *Formatter {
	return &Formatter{
		logLevelToSeverityMap: f.logLevelToSeverityMap,
		logLevelDefault:       f.logLevelDefault,
		projectID:             f.projectID,
	}
}

func (f *Formatter) WithLogLevelToSeverityMap(m map[int]string) *Formatter {
	c := f.clone()
	c.logLevelToSeverityMap = m

	return c
}

func (f *Formatter) WithLogLevelDefault(l int) *Formatter {
	c := f.clone()
	c.logLevelDefault = l

	return c
}

// WithProjectID enables project-qualified trace names derived from the
// X-Cloud-Trace-Context request header.
func (f *Formatter) WithProjectID(p string) *Formatter {
	c := f.clone()
	c.projectID = p

	return c
}

func (f *Formatter) Format(message *string, fields map[string]any) (messageF string, fieldsF map[string]any) {
	meta := &Metadata{
		Severity:       f.formatSeverity(fields),
		InsertId:       commons.GetFieldAsStringOrElse(FieldNameInsertId, fields, ""),
		Timestamp:      TimestampOf(commons.GetFieldAsTimeOrElse(logx.FieldNameTimestamp, fields, time.Now())),
		Labels:         commons.GetFieldAsStringMapOrElse(FieldNameLabels, fields, nil),
		Resource:       f.formatResource(fields),
		Trace:          commons.GetFieldAsStringOrElse(FieldNameTraceId, fields, ""),
		SpanId:         commons.GetFieldAsStringOrElse(FieldNameTraceSpanId, fields, ""),
		TraceSampled:   commons.GetFieldAsBoolOrElse(FieldNameTraceEnabled, fields, false),
		HttpRequest:    f.formatHttpRequest(fields),
		Operation:      f.formatOperation(fields),
		SourceLocation: f.formatSourceLocation(fields),
	}

	f.formatTracing(fields, meta)

	entry := New(meta, f.formatPayload(message, fields))

	record, err := entry.ToJSON(ToJSONOptions{RemoveCircular: true})
	if err != nil {
		return commons.GetAsStringOrElse(message, ""), fields
	}

	enc, err := json.Marshal(record)
	if err != nil {
		return commons.GetAsStringOrElse(message, ""), fields
	}

	return string(enc), fields
}

// formatPayload collects the pass-through fields into a structured payload.
// Each value takes a JSON round trip so the payload only ever holds plain
// shapes; values that do not marshal are skipped like any other
// unsupported payload.
func (f *Formatter) formatPayload(message *string, fields map[string]any) any {
	text := commons.GetAsStringOrElse(message, "")

	data := make(map[string]any)
	for name, value := range fields {
		if commons.Contains(formatterSkipFields, name) {
			continue
		}

		raw, err := json.Marshal(value)
		if err != nil {
			continue
		}
		var plain any
		if err := json.Unmarshal(raw, &plain); err != nil {
			continue
		}
		data[name] = plain
	}

	if len(data) == 0 {
		return text
	}
	if text != "" {
		data["message"] = text
	}

	return data
}

var formatterSkipFields = []string{
	logx.FieldNameCallerFile,
	logx.FieldNameCallerLine,
	logx.FieldNameCallerFunc,
	logx.FieldNameLogLevel,
	logx.FieldNameMessage,
	logx.FieldNameTimestamp,
	logx.FieldNameHTTPRequest,
	logx.FieldNameHTTPResponse,
	FieldNameTraceId,
	FieldNameTraceEnabled,
	FieldNameTraceSpanId,
	FieldNameServerIp,
	FieldNameCacheLookup,
	FieldNameCacheHit,
	FieldNameCacheValidatedWithOriginServer,
	FieldNameCacheFillBytes,
	FieldNameLatency,
	FieldNameInsertId,
	FieldNameLabels,
	FieldNameResourceType,
	FieldNameResourceLabels,
	FieldNameOperationId,
	FieldNameOperationProducer,
	FieldNameOperationFirst,
	FieldNameOperationLast,
}

func (f *Formatter) formatTracing(fields map[string]any, meta *Metadata) {
	req := commons.GetFieldAsRequestPtrOrElse(logx.FieldNameHTTPRequest, fields, nil)
	if meta.Trace != "" || f.projectID == "" || req == nil {
		return
	}

	traceID, spanID, sampled := parseTraceContext(req)
	if traceID == "" {
		return
	}

	meta.Trace = fmt.Sprintf(`projects/%s/traces/%s`, f.projectID, traceID)
	meta.SpanId = spanID
	meta.TraceSampled = sampled
}

// parseTraceContext splits an X-Cloud-Trace-Context header of the form
// TRACE_ID/SPAN_ID;o=1 into its parts. The options suffix is optional.
func parseTraceContext(req *http.Request) (traceID, spanID string, sampled bool) {
	header := req.Header.Get("X-Cloud-Trace-Context")
	if header == "" {
		return "", "", false
	}

	parts := strings.Split(header, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	traceID = parts[0]

	spanID, opts, _ := strings.Cut(parts[1], ";")
	sampled = opts == "o=1"

	return traceID, spanID, sampled
}

func (f *Formatter) formatResource(fields map[string]any) *model.MonitoredResource {
	resType := commons.GetFieldAsStringOrElse(FieldNameResourceType, fields, "")
	if resType == "" {
		return nil
	}

	return &model.MonitoredResource{
		Type:   resType,
		Labels: commons.GetFieldAsStringMapOrElse(FieldNameResourceLabels, fields, nil),
	}
}

func (f *Formatter) formatSourceLocation(fields map[string]any) *model.SourceLocation {
	sourceLocation := &model.SourceLocation{
		File:     commons.GetFieldAsStringOrElse(logx.FieldNameCallerFile, fields, ""),
		Line:     commons.GetFieldAsStringOrElse(logx.FieldNameCallerLine, fields, ""),
		Function: commons.GetFieldAsStringOrElse(logx.FieldNameCallerFunc, fields, ""),
	}

	if sourceLocation.File == "" {
		return nil
	}

	return sourceLocation
}

func (f *Formatter) formatOperation(fields map[string]any) *model.Operation {
	opId := commons.GetFieldAsStringOrElse(FieldNameOperationId, fields, "")
	opProd := commons.GetFieldAsStringOrElse(FieldNameOperationProducer, fields, "")

	if opId == "" && opProd == "" {
		return nil
	}

	return &model.Operation{
		Id:       opId,
		Producer: opProd,
		First:    commons.GetFieldAsBoolOrElse(FieldNameOperationFirst, fields, false),
		Last:     commons.GetFieldAsBoolOrElse(FieldNameOperationLast, fields, false),
	}
}

func (f *Formatter) formatHttpRequest(fields map[string]any) *model.HttpRequest {
	req := commons.GetFieldAsRequestPtrOrElse(logx.FieldNameHTTPRequest, fields, nil)
	if req == nil {
		return nil
	}

	result := &model.HttpRequest{
		RequestMethod:                  req.Method,
		RequestUrl:                     req.RequestURI,
		RequestSize:                    requestSize(req),
		UserAgent:                      req.UserAgent(),
		RemoteIp:                       req.RemoteAddr,
		ServerIp:                       commons.GetFieldAsStringOrElse(FieldNameServerIp, fields, ""),
		Protocol:                       req.Proto,
		Referer:                        req.Referer(),
		CacheLookup:                    commons.GetFieldAsBoolOrElse(FieldNameCacheLookup, fields, false),
		CacheHit:                       commons.GetFieldAsBoolOrElse(FieldNameCacheHit, fields, false),
		CacheValidatedWithOriginServer: commons.GetFieldAsBoolOrElse(FieldNameCacheValidatedWithOriginServer, fields, false),
		CacheFillBytes:                 commons.GetFieldAsStringOrElse(FieldNameCacheFillBytes, fields, ""),
		Latency:                        commons.GetFieldAsStringOrElse(FieldNameLatency, fields, ""),
	}

	if result.RequestUrl == "" && req.URL != nil {
		result.RequestUrl = req.URL.String()
	}

	res := commons.GetFieldAsResponsePtrOrElse(logx.FieldNameHTTPResponse, fields, nil)
	if res == nil {
		return result
	}

	result.Status = res.StatusCode
	result.ResponseSize = responseSize(res)

	return result
}

// requestSize approximates the octet size of the request: request line,
// headers with ": " and CRLF separators, blank line, body.
func requestSize(req *http.Request) string {
	size := int64(len(req.Method) + len(req.URL.String()) + len(req.Proto) + 4)
	size += headerSize(req.Header)
	size += 2

	body, ok := bodySize(&req.Body)
	if !ok {
		return ""
	}

	return fmt.Sprintf(`%d`, size+body)
}

// responseSize mirrors requestSize for the status line, headers and body of
// a response.
func responseSize(resp *http.Response) string {
	size := int64(len(resp.Proto) + len(resp.Status) + 5)
	size += headerSize(resp.Header)
	size += 2

	body, ok := bodySize(&resp.Body)
	if !ok {
		return ""
	}

	return fmt.Sprintf(`%d`, size+body)
}

func headerSize(h http.Header) int64 {
	var size int64
	for k, v := range h {
		for _, value := range v {
			size += int64(len(k) + len(value) + 4)
		}
	}

	return size
}

// bodySize drains the body to count it and restores it for the caller.
func bodySize(body *io.ReadCloser) (int64, bool) {
	if *body == nil {
		return 0, true
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, *body); err != nil {
		return 0, false
	}
	*body = io.NopCloser(bytes.NewReader(buf.Bytes()))

	return int64(buf.Len()), true
}

func (f *Formatter) formatSeverity(fields map[string]any) string {
	lvl := commons.GetFieldAsIntOrElse(logx.FieldNameLogLevel, fields, f.logLevelDefault)

	if s, ok := f.logLevelToSeverityMap[lvl]; ok {
		return s
	}

	return SeverityDefault
}
