// Package schema is the pluggable validation surface the VM core requires
// per spec.md §1/§4.4: "the VM requires a validate(schema, value) -> bool
// predicate and a way to enumerate the properties of an object schema; how
// schemas are constructed is opaque." The VM core only ever calls
// Schema.Validate (then Schema.Explain, for the reason, once Validate has
// returned false) and, for atoms that project known keys (like `return`),
// ObjectSchema.PropertyNames — construction (String/Number/Object/...) is
// a convenience for hosts and tests, not part of the VM's contract.
package schema

import (
	"fmt"
	"reflect"
)

// ValidationError explains why Validate returned false; it is not part of
// the boolean predicate contract itself but is surfaced by the VM's
// ValidationError as the Cause for a useful error message.
type ValidationError struct {
	Message string
	Path    []string
}

func (e *ValidationError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s at path %v", e.Message, e.Path)
	}
	return e.Message
}

// Schema defines a validation predicate. Explain, used only for
// diagnostics, returns the same bool plus a reason when false.
type Schema interface {
	Validate(value any) bool
	Explain(value any) (bool, error)
}

// StringSchema validates strings.
type StringSchema struct {
	MinLength int
	MaxLength int
}

func (s *StringSchema) Validate(value any) bool {
	ok, _ := s.Explain(value)
	return ok
}

func (s *StringSchema) Explain(value any) (bool, error) {
	str, ok := value.(string)
	if !ok {
		return false, &ValidationError{Message: "value is not a string"}
	}
	if s.MinLength > 0 && len(str) < s.MinLength {
		return false, &ValidationError{Message: fmt.Sprintf("string length %d is less than minimum length %d", len(str), s.MinLength)}
	}
	if s.MaxLength > 0 && len(str) > s.MaxLength {
		return false, &ValidationError{Message: fmt.Sprintf("string length %d is greater than maximum length %d", len(str), s.MaxLength)}
	}
	return true, nil
}

// NumberSchema validates numbers.
type NumberSchema struct {
	Min      float64
	Max      float64
	HasMin   bool
	HasMax   bool
	Positive bool
	Negative bool
	Integer  bool
}

func (s *NumberSchema) Validate(value any) bool {
	ok, _ := s.Explain(value)
	return ok
}

func (s *NumberSchema) Explain(value any) (bool, error) {
	num, ok := toFloat(value)
	if !ok {
		return false, &ValidationError{Message: "value is not a number"}
	}
	if s.HasMin && num < s.Min {
		return false, &ValidationError{Message: fmt.Sprintf("number %f is less than minimum %f", num, s.Min)}
	}
	if s.HasMax && num > s.Max {
		return false, &ValidationError{Message: fmt.Sprintf("number %f is greater than maximum %f", num, s.Max)}
	}
	if s.Positive && num <= 0 {
		return false, &ValidationError{Message: "number must be positive"}
	}
	if s.Negative && num >= 0 {
		return false, &ValidationError{Message: "number must be negative"}
	}
	if s.Integer && float64(int64(num)) != num {
		return false, &ValidationError{Message: "number must be an integer"}
	}
	return true, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// BooleanSchema validates booleans.
type BooleanSchema struct{}

func (s *BooleanSchema) Validate(value any) bool {
	_, ok := value.(bool)
	return ok
}

func (s *BooleanSchema) Explain(value any) (bool, error) {
	if s.Validate(value) {
		return true, nil
	}
	return false, &ValidationError{Message: "value is not a boolean"}
}

// ArraySchema validates arrays/slices, optionally per-item.
type ArraySchema struct {
	ItemSchema Schema
	MinItems   int
	MaxItems   int
}

func (s *ArraySchema) Validate(value any) bool {
	ok, _ := s.Explain(value)
	return ok
}

func (s *ArraySchema) Explain(value any) (bool, error) {
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return false, &ValidationError{Message: "value is not an array"}
	}

	length := val.Len()
	if s.MinItems > 0 && length < s.MinItems {
		return false, &ValidationError{Message: fmt.Sprintf("array length %d is less than minimum length %d", length, s.MinItems)}
	}
	if s.MaxItems > 0 && length > s.MaxItems {
		return false, &ValidationError{Message: fmt.Sprintf("array length %d is greater than maximum length %d", length, s.MaxItems)}
	}

	if s.ItemSchema != nil {
		for i := 0; i < length; i++ {
			item := val.Index(i).Interface()
			if ok, err := s.ItemSchema.Explain(item); !ok {
				if valErr, ok := err.(*ValidationError); ok {
					valErr.Path = append([]string{fmt.Sprintf("[%d]", i)}, valErr.Path...)
					return false, valErr
				}
				return false, err
			}
		}
	}

	return true, nil
}

// ObjectSchema validates map[string]any-shaped objects. PropertyNames
// implements the "enumerate the properties of an object schema" half of
// the VM's required contract (spec.md §4.4) — used by the `return` atom
// to know which state keys to project without re-parsing the schema.
type ObjectSchema struct {
	Properties map[string]Schema
	Required   []string
}

func (s *ObjectSchema) Validate(value any) bool {
	ok, _ := s.Explain(value)
	return ok
}

func (s *ObjectSchema) Explain(value any) (bool, error) {
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Map {
		return false, &ValidationError{Message: "value is not an object"}
	}

	for _, req := range s.Required {
		propVal := val.MapIndex(reflect.ValueOf(req))
		if !propVal.IsValid() {
			return false, &ValidationError{Message: fmt.Sprintf("required property %s is missing", req)}
		}
	}

	for key, propSchema := range s.Properties {
		propVal := val.MapIndex(reflect.ValueOf(key))
		if !propVal.IsValid() {
			continue
		}
		if ok, err := propSchema.Explain(propVal.Interface()); !ok {
			if valErr, ok := err.(*ValidationError); ok {
				valErr.Path = append([]string{key}, valErr.Path...)
				return false, valErr
			}
			return false, err
		}
	}

	return true, nil
}

// PropertyNames enumerates the declared property names of an object
// schema, in no particular order.
func (s *ObjectSchema) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		names = append(names, k)
	}
	return names
}

// AnySchema accepts any value; used where an atom declares no meaningful
// input constraints beyond "an object".
type AnySchema struct{}

func (s *AnySchema) Validate(value any) bool           { return true }
func (s *AnySchema) Explain(value any) (bool, error)   { return true, nil }

// String creates a new string schema.
func String() *StringSchema { return &StringSchema{} }

// Number creates a new number schema.
func Number() *NumberSchema { return &NumberSchema{} }

// Boolean creates a new boolean schema.
func Boolean() *BooleanSchema { return &BooleanSchema{} }

// Array creates a new array schema.
func Array(itemSchema Schema) *ArraySchema { return &ArraySchema{ItemSchema: itemSchema} }

// Object creates a new object schema.
func Object(properties map[string]Schema) *ObjectSchema {
	return &ObjectSchema{Properties: properties}
}

// Any creates a schema accepting any value.
func Any() Schema { return &AnySchema{} }
