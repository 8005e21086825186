package gcpentry

import (
	"errors"
	"fmt"
	"reflect"

	"google.golang.org/protobuf/types/known/structpb"
)

// PayloadKind classifies the raw data attached to an entry. The accepted
// shapes form a closed set: strings become the text payload, plain keyed
// mappings become the structured payload, nil means no payload. Everything
// else (numbers, booleans, arrays, binary blobs, structs) is unsupported
// and produces an entry with neither payload field set.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadText
	PayloadJSON
	PayloadUnsupported
)

// ErrCircular reports a self-referential structured payload when
// RemoveCircular was not requested.
var ErrCircular = errors.New("gcpentry: structured payload references itself")

func classifyPayload(data any) PayloadKind {
	switch data.(type) {
	case nil:
		return PayloadNone
	case string:
		return PayloadText
	case map[string]any:
		return PayloadJSON
	default:
		return PayloadUnsupported
	}
}

// toStructValue converts a structured payload into the wire struct form.
// Self-references become CircularMarker when removeCircular is set and are
// rejected with ErrCircular otherwise; conversion is never partial.
func toStructValue(data map[string]any, removeCircular bool) (*structpb.Struct, error) {
	w := &cycleWalker{remove: removeCircular, seen: map[uintptr]bool{}}
	plain, err := w.walk(data)
	if err != nil {
		return nil, err
	}
	st, err := structpb.NewStruct(plain.(map[string]any))
	if err != nil {
		return nil, fmt.Errorf("gcpentry: convert structured payload: %w", err)
	}
	return st, nil
}

// fromStructValue is the inverse, used when lifting payloads out of API
// responses.
func fromStructValue(st *structpb.Struct) map[string]any {
	if st == nil {
		return nil
	}
	return st.AsMap()
}

// cycleWalker rebuilds a value tree while tracking the maps and slices on
// the current path by identity, so a value that contains itself is caught
// before conversion recurses into it.
type cycleWalker struct {
	remove bool
	seen   map[uintptr]bool
}

func (w *cycleWalker) walk(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		p := reflect.ValueOf(t).Pointer()
		if w.seen[p] {
			if w.remove {
				return CircularMarker, nil
			}
			return nil, ErrCircular
		}
		w.seen[p] = true
		out := make(map[string]any, len(t))
		for k, child := range t {
			nv, err := w.walk(child)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		delete(w.seen, p)
		return out, nil
	case []any:
		if len(t) == 0 {
			return t, nil
		}
		p := reflect.ValueOf(t).Pointer()
		if w.seen[p] {
			if w.remove {
				return CircularMarker, nil
			}
			return nil, ErrCircular
		}
		w.seen[p] = true
		out := make([]any, len(t))
		for i, child := range t {
			nv, err := w.walk(child)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		delete(w.seen, p)
		return out, nil
	default:
		return v, nil
	}
}
