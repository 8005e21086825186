package gcpentry

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/logx-go/gcp-entry/pkg/gcpentry/model"
)

type timestampKind int

const (
	timestampUnset timestampKind = iota
	timestampTime
	timestampString
	timestampPair
)

// Timestamp holds one of the three representations the API accepts for an
// entry timestamp: a wall-clock time, an RFC3339/Zulu string, or the wire
// seconds/nanos pair.
type Timestamp struct {
	kind timestampKind
	wall time.Time
	str  string
	pair model.Timestamp
}

// TimestampOf wraps a wall-clock time.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{kind: timestampTime, wall: t}
}

// TimestampString wraps an RFC3339/Zulu formatted string, e.g.
// "2020-01-01T00:00:00.123456789Z". The string is not validated here;
// normalization degrades unparseable strings to the zero pair.
func TimestampString(s string) Timestamp {
	return Timestamp{kind: timestampString, str: s}
}

// TimestampPair wraps an already normalized seconds/nanos pair.
func TimestampPair(seconds int64, nanos int32) Timestamp {
	return Timestamp{kind: timestampPair, pair: model.Timestamp{Seconds: seconds, Nanos: nanos}}
}

// IsZero reports whether the timestamp was never set.
func (ts Timestamp) IsZero() bool {
	return ts.kind == timestampUnset
}

// Time reports the wall-clock form when the timestamp holds one.
func (ts Timestamp) Time() (time.Time, bool) {
	return ts.wall, ts.kind == timestampTime
}

// normalize converts any representation into the wire seconds/nanos pair.
// An unset timestamp normalizes to the current time.
func (ts Timestamp) normalize() *model.Timestamp {
	switch ts.kind {
	case timestampTime:
		return &model.Timestamp{Seconds: ts.wall.Unix(), Nanos: int32(ts.wall.Nanosecond())}
	case timestampString:
		return normalizeTimestampString(ts.str)
	case timestampPair:
		p := ts.pair
		return &p
	default:
		now := time.Now()
		return &model.Timestamp{Seconds: now.Unix(), Nanos: int32(now.Nanosecond())}
	}
}

var fractionPattern = regexp.MustCompile(`\.(\d+)`)

// normalizeTimestampString splits the string at the first '.', ',' or 'Z' and
// parses the integer-second prefix, then extracts the fractional digits from
// the full string on their own. The two extractions are independent so that
// sub-millisecond digits survive regardless of the prefix parse. Strings
// whose prefix does not parse yield seconds=0.
func normalizeTimestampString(s string) *model.Timestamp {
	prefix := s
	if i := strings.IndexAny(s, ".,Z"); i >= 0 {
		prefix = s[:i]
	}

	var seconds int64
	if t, err := time.Parse("2006-01-02T15:04:05Z", prefix+"Z"); err == nil {
		seconds = t.Unix()
	}

	var nanos int64
	if m := fractionPattern.FindStringSubmatch(s); m != nil {
		digits := m[1]
		if len(digits) > 9 {
			digits = digits[:9]
		} else {
			digits += strings.Repeat("0", 9-len(digits))
		}
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			nanos = n
		}
	}

	return &model.Timestamp{Seconds: seconds, Nanos: int32(nanos)}
}
