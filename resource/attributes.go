package resource

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Attributes is a server record exactly as it was decoded. Record types keep
// one next to their typed fields so that fields they do not model survive a
// fetch followed by a full-record update.
type Attributes map[string]any

// DecodeAttributes decodes one JSON object. A JSON null yields nil.
func DecodeAttributes(data []byte) (Attributes, error) {
	var attrs Attributes
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, errors.Wrap(err, "[resource.DecodeAttributes]")
	}
	return attrs, nil
}

// Clone returns a copy that is safe to modify. It is never nil.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a)+8)
	maps.Copy(out, a)
	return out
}

// SetID sets "id" unless id is zero; ids are only ever assigned by the server.
func (a Attributes) SetID(id int64) {
	if id != 0 {
		a["id"] = id
	}
}

// SetString sets key to v. An empty v is only written when the record
// already had the key, so clearing a field works and new records stay lean.
func (a Attributes) SetString(key, v string) {
	if _, had := a[key]; v != "" || had {
		a[key] = v
	}
}

// Fields reads typed values out of a. The first conversion failure is kept
// and reported by Err.
func (a Attributes) Fields() *FieldReader {
	return &FieldReader{attrs: a}
}

type FieldReader struct {
	attrs Attributes
	err   error
}

func (r *FieldReader) Err() error {
	return r.err
}

// String renders scalars as text; a phone number sent as a JSON number is
// still a phone number.
func (r *FieldReader) String(key string) string {
	switch v := r.attrs[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Float accepts a JSON number or a numeric string. Missing, null and blank
// values are zero.
func (r *FieldReader) Float(key string) float64 {
	switch v := r.attrs[key].(type) {
	case nil:
		return 0
	case float64:
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			r.fail(key, v)
			return 0
		}
		return f
	default:
		r.fail(key, v)
		return 0
	}
}

// Int is Float for whole numbers such as ids.
func (r *FieldReader) Int(key string) int64 {
	switch v := r.attrs[key].(type) {
	case nil:
		return 0
	case float64:
		return int64(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			r.fail(key, v)
			return 0
		}
		return n
	default:
		r.fail(key, v)
		return 0
	}
}

func (r *FieldReader) fail(key string, v any) {
	if r.err == nil {
		r.err = errors.Errorf("field %q: %v is not a number", key, v)
	}
}
