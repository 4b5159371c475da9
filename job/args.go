package job

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xraph/resque"
)

var jsonNull = []byte("null")

// Args holds job arguments: absent, or a JSON object. The zero value is
// absent.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalJSON.
type Args struct {
	raw json.RawMessage
}

// NewArgs converts v into Args. nil, nil maps and nil pointers are absent.
// Anything else must encode to a JSON object; otherwise NewArgs returns
// an error wrapping resque.ErrInvalidArgument.
func NewArgs(v any) (Args, error) {
	switch a := v.(type) {
	case nil:
		return Args{}, nil
	case Args:
		return a, nil
	case *Args:
		if a == nil {
			return Args{}, nil
		}
		return *a, nil
	case json.RawMessage:
		return argsFromJSON(a)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return Args{}, fmt.Errorf("%w: args: %w", resque.ErrInvalidArgument, err)
	}
	return argsFromJSON(b)
}

// MustArgs is like NewArgs but panics on error. Intended for literals in
// tests and examples.
func MustArgs(v any) Args {
	a, err := NewArgs(v)
	if err != nil {
		panic(err)
	}
	return a
}

func argsFromJSON(b []byte) (Args, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		return Args{}, nil
	}
	if b[0] != '{' {
		return Args{}, fmt.Errorf("%w: args must be a JSON object or null, got %s", resque.ErrInvalidArgument, kindOf(b[0]))
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return Args{}, fmt.Errorf("%w: args: %w", resque.ErrInvalidArgument, err)
	}
	return Args{raw: buf.Bytes()}, nil
}

func kindOf(c byte) string {
	switch {
	case c == '[':
		return "array"
	case c == '"':
		return "string"
	case c == 't' || c == 'f':
		return "boolean"
	default:
		return "scalar"
	}
}

// IsAbsent reports whether no arguments were given.
func (a Args) IsAbsent() bool { return len(a.raw) == 0 }

// Raw returns the compact JSON object, or nil when absent.
func (a Args) Raw() json.RawMessage {
	if a.IsAbsent() {
		return nil
	}
	return append(json.RawMessage(nil), a.raw...)
}

// Decode unmarshals the arguments into v. Absent args leave v untouched.
func (a Args) Decode(v any) error {
	if a.IsAbsent() {
		return nil
	}
	return json.Unmarshal(a.raw, v)
}

// Map returns the arguments as a generic map. Numbers are kept as
// json.Number so they survive a round trip unchanged.
func (a Args) Map() (map[string]any, error) {
	if a.IsAbsent() {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(a.raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// MarshalJSON implements json.Marshaler.
func (a Args) MarshalJSON() ([]byte, error) {
	if a.IsAbsent() {
		return jsonNull, nil
	}
	return a.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Args) UnmarshalJSON(b []byte) error {
	parsed, err := argsFromJSON(b)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// String returns the JSON form.
func (a Args) String() string {
	b, _ := a.MarshalJSON()
	return string(b)
}
