package options

import (
	"errors"
	"fmt"
)

// ErrMalformedSchema is returned when an option description is neither a
// valid choice set nor a valid numeric range.
var ErrMalformedSchema = errors.New("malformed option schema")

// SchemaError describes a malformed option description for a single label.
type SchemaError struct {
	Label  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedSchema, e.Reason)
	}
	return fmt.Sprintf("%s for %q: %s", ErrMalformedSchema, e.Label, e.Reason)
}

// Unwrap makes SchemaError match ErrMalformedSchema with errors.Is.
func (e *SchemaError) Unwrap() error { return ErrMalformedSchema }

// OptionSchema describes the legal values of one board attribute.
// It is either a Choice or a Range.
type OptionSchema interface {
	isOptionSchema()
}

// Choice is a finite, ordered set of permitted scalar values.
type Choice struct {
	Values []Value
}

// Range is an inclusive numeric interval.
type Range struct {
	Min Value
	Max Value
}

func (Choice) isOptionSchema() {}
func (Range) isOptionSchema()  {}

// NewChoice builds a Choice from native Go values. It panics on unsupported input.
func NewChoice(values ...any) Choice {
	return Choice{Values: Values(values...)}
}

// NewRange builds a Range from native Go values. It panics on unsupported input.
func NewRange(minimum, maximum any) Range {
	return Range{Min: MustValue(minimum), Max: MustValue(maximum)}
}

// IsChoice reports whether s is a choice set.
func IsChoice(s OptionSchema) bool {
	_, ok := s.(Choice)
	return ok
}

// IsRange reports whether s is a numeric range.
func IsRange(s OptionSchema) bool {
	_, ok := s.(Range)
	return ok
}

// Kind returns the scalar kind of the first choice, or KindNull if empty.
func (c Choice) Kind() Kind {
	if len(c.Values) == 0 {
		return KindNull
	}
	return c.Values[0].Kind()
}

// Contains reports whether v is a member of c. Membership is kind-strict.
func (c Choice) Contains(v Value) bool {
	for _, item := range c.Values {
		if item.Equal(v) {
			return true
		}
	}
	return false
}

// Check verifies that c is a usable choice set: non-empty, only scalars of a
// single kind, no duplicates and no empty strings.
func (c Choice) Check() error {
	if len(c.Values) == 0 {
		return errors.New("choice list is empty")
	}
	kind := c.Values[0].Kind()
	for i, v := range c.Values {
		if !v.IsScalar() {
			return fmt.Errorf("choice %s is a %s, not a string, integer or float", v, v.Kind())
		}
		if v.Kind() != kind {
			return fmt.Errorf("choice list mixes %s and %s values", kind, v.Kind())
		}
		if s, ok := v.Str(); ok && s == "" {
			return errors.New("choice list contains an empty string")
		}
		for _, prev := range c.Values[:i] {
			if prev.Equal(v) {
				return fmt.Errorf("choice %s is listed more than once", v)
			}
		}
	}
	return nil
}

// Check verifies that both bounds are numeric and min <= max.
func (r Range) Check() error {
	if !r.Min.IsNumeric() || !r.Max.IsNumeric() {
		return fmt.Errorf("range bounds must be numeric, got min %s (%s) and max %s (%s)",
			r.Min, r.Min.Kind(), r.Max, r.Max.Kind())
	}
	if cmp, ok := r.Min.Compare(r.Max); !ok || cmp > 0 {
		return fmt.Errorf("range minimum %s exceeds maximum %s", r.Min, r.Max)
	}
	return nil
}

// Contains reports whether v is numeric and lies within r, bounds included.
func (r Range) Contains(v Value) bool {
	lo, ok := r.Min.Compare(v)
	if !ok || lo > 0 {
		return false
	}
	hi, ok := v.Compare(r.Max)
	return ok && hi <= 0
}

// Within reports whether r is nested inside outer.
func (r Range) Within(outer Range) bool {
	lo, ok := r.Min.Compare(outer.Min)
	if !ok || lo < 0 {
		return false
	}
	hi, ok := r.Max.Compare(outer.Max)
	return ok && hi <= 0
}

// String renders r as [min, max].
func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Min, r.Max)
}

func cloneSchema(s OptionSchema) OptionSchema {
	switch x := s.(type) {
	case Choice:
		return Choice{Values: append([]Value(nil), x.Values...)}
	case Range:
		return x
	default:
		return s
	}
}

// schemaFromValue interprets a decoded {"choices": [...]} or
// {"range": {"min": N, "max": N}} object. Other members are ignored.
func schemaFromValue(label string, v Value) (OptionSchema, error) {
	if v.Kind() != KindObject {
		return nil, &SchemaError{Label: label, Reason: fmt.Sprintf("expected an object, got %s", v.Kind())}
	}
	choices, hasChoices := v.Field("choices")
	rng, hasRange := v.Field("range")

	switch {
	case hasChoices && hasRange:
		return nil, &SchemaError{Label: label, Reason: "both choices and range are present"}
	case hasChoices:
		if choices.Kind() != KindList {
			return nil, &SchemaError{Label: label, Reason: fmt.Sprintf("choices must be a list, got %s", choices.Kind())}
		}
		return Choice{Values: append([]Value(nil), choices.Items()...)}, nil
	case hasRange:
		if rng.Kind() != KindObject {
			return nil, &SchemaError{Label: label, Reason: fmt.Sprintf("range must be an object, got %s", rng.Kind())}
		}
		minimum, okMin := rng.Field("min")
		maximum, okMax := rng.Field("max")
		if !okMin || !okMax {
			return nil, &SchemaError{Label: label, Reason: "range requires both min and max"}
		}
		return Range{Min: minimum, Max: maximum}, nil
	default:
		return nil, &SchemaError{Label: label, Reason: "no choices or range attribute is present"}
	}
}

func schemaToAny(label string, s OptionSchema) (map[string]any, error) {
	switch x := s.(type) {
	case Choice:
		values := x.Values
		if values == nil {
			values = []Value{}
		}
		return map[string]any{"choices": values}, nil
	case Range:
		return map[string]any{"range": map[string]Value{"min": x.Min, "max": x.Max}}, nil
	default:
		return nil, &SchemaError{Label: label, Reason: fmt.Sprintf("unsupported schema type %T", s)}
	}
}
