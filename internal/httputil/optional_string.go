package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional tracks presence and value for JSON merge-patch fields (RFC 7396).
// A pointer cannot tell an absent field from an explicit null:
//   - Present=false: field absent from JSON (don't change)
//   - Present=true, Value=nil: field is JSON null (clear)
//   - Present=true, Value!=nil: field has a value, possibly empty
type Optional[T any] struct {
	Present bool
	Value   *T
}

// OptionalString is the common case for text fields.
type OptionalString = Optional[string]

// UnmarshalJSON implements json.Unmarshaler.
// When this method is called, the field was present in the JSON.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
