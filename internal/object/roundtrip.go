package object

import (
	"encoding/json"
	"fmt"
)

// SchemaValidationError reports that an assembled tree failed the round-trip
// re-parse. Nothing carrying this error may reach the network layer.
type SchemaValidationError struct {
	Schema string
	Err    error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation failed for %s: %v", e.Schema, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// AsMap serializes an entity tree to its plain nested-map form, the shape
// submitted to the remote object service.
func AsMap(obj Object) (map[string]any, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", obj.SchemaID(), err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("serialize %s: %w", obj.SchemaID(), err)
	}
	return m, nil
}

// Decode re-parses a nested map against the schema named by its "schema"
// field, rejecting unknown fields. Returns a SchemaValidationError on any
// parse or invariant failure.
func Decode(m map[string]any) (Object, error) {
	schema, _ := m["schema"].(string)

	var obj Object
	switch schema {
	case SchemaPointset:
		obj = &Pointset{}
	case SchemaLineSegments:
		obj = &LineSegments{}
	case SchemaDownholeCollection:
		obj = &DownholeCollection{}
	case SchemaDownholeIntervals:
		obj = &DownholeIntervals{}
	default:
		return nil, &SchemaValidationError{Schema: schema, Err: fmt.Errorf("unknown schema %q", schema)}
	}

	if err := decodeStrict(m, obj); err != nil {
		return nil, &SchemaValidationError{Schema: schema, Err: err}
	}
	if err := obj.Validate(); err != nil {
		return nil, &SchemaValidationError{Schema: schema, Err: err}
	}
	return obj, nil
}

// RoundTrip serializes obj and immediately re-parses it, returning the map
// form ready for submission. A failure here means the assembly step produced
// a structurally invalid tree; the object must be discarded.
func RoundTrip(obj Object) (map[string]any, error) {
	m, err := AsMap(obj)
	if err != nil {
		return nil, &SchemaValidationError{Schema: obj.SchemaID(), Err: err}
	}
	if _, err := Decode(m); err != nil {
		return nil, err
	}
	return m, nil
}
