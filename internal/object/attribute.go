package object

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Attribute type discriminators used in the serialized form.
const (
	AttributeTypeScalar   = "scalar"
	AttributeTypeCategory = "category"
)

// Attribute is a named per-row scalar field, continuous or categorical. The
// concrete type is selected by the attribute_type discriminator on re-parse.
type Attribute interface {
	AttributeName() string
	AttributeKey() string
	ValueCount() int64
}

// NanContinuous declares the missing-value policy for continuous attributes.
// No explicit sentinel list is used; NaN in the value array marks absence.
type NanContinuous struct {
	Values []float64 `json:"values" mapstructure:"values"`
}

// ContinuousAttribute is a float64 value array with a stable key.
type ContinuousAttribute struct {
	Name           string        `json:"name" mapstructure:"name"`
	Key            string        `json:"key" mapstructure:"key"`
	AttributeType  string        `json:"attribute_type" mapstructure:"attribute_type"`
	NanDescription NanContinuous `json:"nan_description" mapstructure:"nan_description"`
	Values         Reference     `json:"values" mapstructure:"values"`
}

func (a *ContinuousAttribute) AttributeName() string { return a.Name }
func (a *ContinuousAttribute) AttributeKey() string  { return a.Key }
func (a *ContinuousAttribute) ValueCount() int64     { return a.Values.Length }

// NanCategorical declares the missing-value policy for categorical
// attributes. Missing source values are folded into the empty-string
// category, so the sentinel list stays empty.
type NanCategorical struct {
	Values []int64 `json:"values" mapstructure:"values"`
}

// CategoryAttribute is a dictionary-encoded string column: a lookup table of
// dense codes starting at 1 plus a parallel integer code array.
type CategoryAttribute struct {
	Name           string         `json:"name" mapstructure:"name"`
	Key            string         `json:"key" mapstructure:"key"`
	AttributeType  string         `json:"attribute_type" mapstructure:"attribute_type"`
	NanDescription NanCategorical `json:"nan_description" mapstructure:"nan_description"`
	Table          Reference      `json:"table" mapstructure:"table"`
	Values         Reference      `json:"values" mapstructure:"values"`
}

func (a *CategoryAttribute) AttributeName() string { return a.Name }
func (a *CategoryAttribute) AttributeKey() string  { return a.Key }
func (a *CategoryAttribute) ValueCount() int64     { return a.Values.Length }

// attributeType is the interface type attribute maps decode into.
var attributeType = reflect.TypeOf((*Attribute)(nil)).Elem()

// attributeDecodeHook decodes a map into the concrete attribute type named
// by its attribute_type field. Used by the round-trip re-parse.
func attributeDecodeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != attributeType {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("attribute: expected map, got %T", data)
	}

	kind, _ := m["attribute_type"].(string)
	switch kind {
	case AttributeTypeScalar:
		var a ContinuousAttribute
		if err := decodeStrict(m, &a); err != nil {
			return nil, fmt.Errorf("scalar attribute: %w", err)
		}
		return &a, nil
	case AttributeTypeCategory:
		var a CategoryAttribute
		if err := decodeStrict(m, &a); err != nil {
			return nil, fmt.Errorf("category attribute: %w", err)
		}
		return &a, nil
	default:
		return nil, fmt.Errorf("unknown attribute_type %q", kind)
	}
}

// decodeStrict decodes a nested map into out, rejecting unused keys so that
// assembly mistakes surface as parse failures.
func decodeStrict(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFunc(attributeDecodeHook),
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}
