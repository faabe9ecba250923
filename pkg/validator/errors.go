package validator

import (
	"errors"
	"fmt"

	"github.com/pcbshop/boardopts/pkg/options"
)

// Kind classifies a validation failure.
type Kind string

const (
	KindOptionNotOffered      Kind = "option_not_offered"
	KindMissingLabel          Kind = "missing_label"
	KindOutOfChoices          Kind = "out_of_choices"
	KindChoiceNotAvailable    Kind = "choice"
	KindOutOfRange            Kind = "out_of_range"
	KindSpanNotContained      Kind = "span"
	KindAttributeTypeMismatch Kind = "attribute_type"
	KindMalformedSchema       Kind = "malformed_schema"
)

// Sentinel errors for use with errors.Is. Every *ValidationError unwraps to
// exactly one of these.
var (
	ErrOptionNotOffered      = errors.New("option not offered")
	ErrMissingLabel          = errors.New("label missing from external options")
	ErrOutOfChoices          = errors.New("value out of choices")
	ErrChoiceNotAvailable    = errors.New("choice not externally available")
	ErrOutOfRange            = errors.New("value out of range")
	ErrSpanNotContained      = errors.New("span not contained in external span")
	ErrAttributeTypeMismatch = errors.New("option type mismatch")
	ErrMalformedSchema       = options.ErrMalformedSchema
)

var sentinels = map[Kind]error{
	KindOptionNotOffered:      ErrOptionNotOffered,
	KindMissingLabel:          ErrMissingLabel,
	KindOutOfChoices:          ErrOutOfChoices,
	KindChoiceNotAvailable:    ErrChoiceNotAvailable,
	KindOutOfRange:            ErrOutOfRange,
	KindSpanNotContained:      ErrSpanNotContained,
	KindAttributeTypeMismatch: ErrAttributeTypeMismatch,
	KindMalformedSchema:       ErrMalformedSchema,
}

// ValidationError reports the first violation found by a validator.
type ValidationError struct {
	Kind  Kind
	Label string

	// Value is the rejected attribute value or internal choice, if any.
	Value *options.Value

	// Bounds is the permitted range for range violations.
	Bounds *options.Range

	// Suggestion is the closest known label when Label is unknown.
	Suggestion string

	// Reason carries extra detail, e.g. why an internal choice list is invalid.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := e.message()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *ValidationError) message() string {
	switch e.Kind {
	case KindOptionNotOffered:
		return fmt.Sprintf("the %q option is currently not offered", e.Label)
	case KindMissingLabel:
		return fmt.Sprintf("externally available options do not contain %q", e.Label)
	case KindOutOfChoices:
		return fmt.Sprintf("choice %s is not available for attribute %q", e.valueString(), e.Label)
	case KindChoiceNotAvailable:
		if e.Value != nil {
			return fmt.Sprintf("internal choice %s for %q is not externally available", e.Value, e.Label)
		}
		return fmt.Sprintf("internal choices for %q are not valid", e.Label)
	case KindOutOfRange:
		if e.Bounds != nil {
			return fmt.Sprintf("%s is not in available range %s for attribute %q", e.valueString(), e.Bounds, e.Label)
		}
		return fmt.Sprintf("%s is not in available range for attribute %q", e.valueString(), e.Label)
	case KindSpanNotContained:
		if e.Bounds != nil {
			return fmt.Sprintf("%q span is not fully contained in externally available span %s", e.Label, e.Bounds)
		}
		return fmt.Sprintf("%q span is not valid", e.Label)
	case KindAttributeTypeMismatch:
		return fmt.Sprintf("board option types for internal and external %q values do not match", e.Label)
	case KindMalformedSchema:
		return fmt.Sprintf("options for %q are malformed", e.Label)
	default:
		return fmt.Sprintf("validation failed for %q", e.Label)
	}
}

func (e *ValidationError) valueString() string {
	if e.Value == nil {
		return "<none>"
	}
	return e.Value.String()
}

// Unwrap returns the sentinel error matching e.Kind.
func (e *ValidationError) Unwrap() error {
	return sentinels[e.Kind]
}

// Details returns the error as a flat map for API error payloads.
func (e *ValidationError) Details() map[string]any {
	d := map[string]any{
		"kind":  string(e.Kind),
		"label": e.Label,
	}
	if e.Value != nil {
		d["value"] = e.Value.Interface()
	}
	if e.Bounds != nil {
		d["min"] = e.Bounds.Min.Interface()
		d["max"] = e.Bounds.Max.Interface()
	}
	if e.Suggestion != "" {
		d["suggestion"] = e.Suggestion
	}
	if e.Reason != "" {
		d["reason"] = e.Reason
	}
	return d
}

// KindOf returns the Kind of err if it is or wraps a *ValidationError.
func KindOf(err error) (Kind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}

func valuePtr(v options.Value) *options.Value { return &v }

func rangePtr(r options.Range) *options.Range { return &r }
