package validator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pcbshop/boardopts/pkg/options"
)

// DefaultVendor is the fabrication vendor whose external options bound the
// shop's offer unless another vendor is named.
const DefaultVendor = "Example PCB Shop"

// OfferedSource returns the most recently published offered options.
type OfferedSource interface {
	CurrentOffered(ctx context.Context) (options.OptionSet, error)
}

// ExternalSource returns the most recently recorded external options of a vendor.
type ExternalSource interface {
	CurrentExternal(ctx context.Context, vendor string) (options.OptionSet, error)
}

// OfferedSourceFunc adapts a function to OfferedSource.
type OfferedSourceFunc func(ctx context.Context) (options.OptionSet, error)

// CurrentOffered calls f.
func (f OfferedSourceFunc) CurrentOffered(ctx context.Context) (options.OptionSet, error) {
	return f(ctx)
}

// ExternalSourceFunc adapts a function to ExternalSource.
type ExternalSourceFunc func(ctx context.Context, vendor string) (options.OptionSet, error)

// CurrentExternal calls f.
func (f ExternalSourceFunc) CurrentExternal(ctx context.Context, vendor string) (options.OptionSet, error) {
	return f(ctx, vendor)
}

type config struct {
	suggestions bool
}

// Option is a functional option for configuring validators.
type Option func(*config)

// WithSuggestions enables or disables closest-label suggestions on unknown
// labels. Suggestions are enabled by default.
func WithSuggestions(enabled bool) Option {
	return func(c *config) {
		c.suggestions = enabled
	}
}

func newConfig(opts []Option) config {
	c := config{suggestions: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// AttributeValidator checks a board's chosen attributes against the offered options.
// It is immutable and safe for concurrent use.
type AttributeValidator struct {
	offered options.OptionSet
	cfg     config
}

// NewAttributeValidator creates an AttributeValidator over a private copy of offered.
func NewAttributeValidator(offered options.OptionSet, opts ...Option) *AttributeValidator {
	return &AttributeValidator{
		offered: offered.Clone(),
		cfg:     newConfig(opts),
	}
}

// NewAttributeValidatorFromSource creates an AttributeValidator over the
// currently published offered options.
func NewAttributeValidatorFromSource(ctx context.Context, src OfferedSource, opts ...Option) (*AttributeValidator, error) {
	if src == nil {
		return nil, fmt.Errorf("offered options source cannot be nil")
	}
	offered, err := src.CurrentOffered(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load offered options: %w", err)
	}
	return NewAttributeValidator(offered, opts...), nil
}

// Offered returns a copy of the options the validator checks against.
func (v *AttributeValidator) Offered() options.OptionSet {
	return v.offered.Clone()
}

// Validate checks every attribute in label order and returns the first
// violation as a *ValidationError, or nil if all attributes are acceptable.
func (v *AttributeValidator) Validate(attrs options.AttributeSet) error {
	for _, label := range attrs.Labels() {
		if err := v.validateAttribute(label, attrs[label]); err != nil {
			slog.Debug("attribute rejected",
				"label", label,
				"value", attrs[label].String(),
				"error", err)
			return err
		}
	}
	slog.Debug("attributes validated", "count", len(attrs))
	return nil
}

func (v *AttributeValidator) validateAttribute(label string, value options.Value) error {
	schema, ok := v.offered[label]
	if !ok {
		return &ValidationError{
			Kind:       KindOptionNotOffered,
			Label:      label,
			Value:      valuePtr(value),
			Suggestion: v.suggest(label),
		}
	}

	switch s := schema.(type) {
	case options.Choice:
		if s.Contains(value) {
			return nil
		}
		ve := &ValidationError{Kind: KindOutOfChoices, Label: label, Value: valuePtr(value)}
		if len(s.Values) > 0 && value.Kind() != s.Kind() {
			ve.Reason = fmt.Sprintf("expected %s, got %s", s.Kind(), value.Kind())
		}
		return ve
	case options.Range:
		if err := s.Check(); err != nil {
			return &ValidationError{Kind: KindMalformedSchema, Label: label, Reason: err.Error()}
		}
		if !value.IsNumeric() {
			return &ValidationError{
				Kind:   KindOutOfRange,
				Label:  label,
				Value:  valuePtr(value),
				Bounds: rangePtr(s),
				Reason: fmt.Sprintf("expected a number, got %s", value.Kind()),
			}
		}
		if !s.Contains(value) {
			return &ValidationError{Kind: KindOutOfRange, Label: label, Value: valuePtr(value), Bounds: rangePtr(s)}
		}
		return nil
	default:
		return &ValidationError{
			Kind:   KindMalformedSchema,
			Label:  label,
			Reason: "no choices or range attribute is present",
		}
	}
}

func (v *AttributeValidator) suggest(label string) string {
	if !v.cfg.suggestions {
		return ""
	}
	return closestLabel(label, v.offered.Labels())
}

// BoardOptionValidator checks that internally offered options are supported
// by a vendor's external options. It is immutable and safe for concurrent use.
type BoardOptionValidator struct {
	vendor   string
	external options.OptionSet
	cfg      config
}

// NewBoardOptionValidator creates a BoardOptionValidator over a private copy of external.
func NewBoardOptionValidator(external options.OptionSet, opts ...Option) *BoardOptionValidator {
	return &BoardOptionValidator{
		external: external.Clone(),
		cfg:      newConfig(opts),
	}
}

// NewBoardOptionValidatorForVendor creates a BoardOptionValidator over the most
// recent external options recorded for vendor.
func NewBoardOptionValidatorForVendor(ctx context.Context, src ExternalSource, vendor string, opts ...Option) (*BoardOptionValidator, error) {
	if src == nil {
		return nil, fmt.Errorf("external options source cannot be nil")
	}
	if vendor == "" {
		vendor = DefaultVendor
	}
	external, err := src.CurrentExternal(ctx, vendor)
	if err != nil {
		return nil, fmt.Errorf("failed to load external options for vendor %q: %w", vendor, err)
	}
	v := NewBoardOptionValidator(external, opts...)
	v.vendor = vendor
	return v, nil
}

// Vendor returns the vendor name, or "" when constructed from a bare option set.
func (v *BoardOptionValidator) Vendor() string {
	return v.vendor
}

// Validate checks every internal option in label order and returns the first
// violation as a *ValidationError, or nil if the vendor supports all of them.
func (v *BoardOptionValidator) Validate(internal options.OptionSet) error {
	for _, label := range internal.Labels() {
		if err := v.validateOption(label, internal[label]); err != nil {
			slog.Debug("internal option rejected",
				"vendor", v.vendor,
				"label", label,
				"error", err)
			return err
		}
	}
	slog.Debug("internal options validated", "vendor", v.vendor, "count", len(internal))
	return nil
}

func (v *BoardOptionValidator) validateOption(label string, internal options.OptionSchema) error {
	external, ok := v.external[label]
	if !ok {
		return &ValidationError{
			Kind:       KindMissingLabel,
			Label:      label,
			Suggestion: v.suggest(label),
		}
	}

	switch in := internal.(type) {
	case options.Choice:
		ex, ok := external.(options.Choice)
		if !ok {
			return typeMismatch(label, external)
		}
		return validateChoices(label, in, ex)
	case options.Range:
		ex, ok := external.(options.Range)
		if !ok {
			return typeMismatch(label, external)
		}
		return validateSpan(label, in, ex)
	default:
		return &ValidationError{
			Kind:   KindMalformedSchema,
			Label:  label,
			Reason: "internal option has no choices or range attribute",
		}
	}
}

func typeMismatch(label string, external options.OptionSchema) error {
	if external == nil {
		return &ValidationError{
			Kind:   KindMalformedSchema,
			Label:  label,
			Reason: "external option has no choices or range attribute",
		}
	}
	return &ValidationError{Kind: KindAttributeTypeMismatch, Label: label}
}

func validateChoices(label string, internal, external options.Choice) error {
	if err := internal.Check(); err != nil {
		return &ValidationError{Kind: KindChoiceNotAvailable, Label: label, Reason: err.Error()}
	}
	for _, value := range internal.Values {
		if !external.Contains(value) {
			return &ValidationError{Kind: KindChoiceNotAvailable, Label: label, Value: valuePtr(value)}
		}
	}
	return nil
}

func validateSpan(label string, internal, external options.Range) error {
	if err := internal.Check(); err != nil {
		return &ValidationError{Kind: KindSpanNotContained, Label: label, Reason: err.Error()}
	}
	if err := external.Check(); err != nil {
		return &ValidationError{Kind: KindMalformedSchema, Label: label, Reason: "external " + err.Error()}
	}
	if !internal.Within(external) {
		return &ValidationError{
			Kind:   KindSpanNotContained,
			Label:  label,
			Bounds: rangePtr(external),
			Reason: fmt.Sprintf("internal span is %s", internal),
		}
	}
	return nil
}

func (v *BoardOptionValidator) suggest(label string) string {
	if !v.cfg.suggestions {
		return ""
	}
	return closestLabel(label, v.external.Labels())
}

// ValidateExternalConsistency validates internal against the current external
// options of DefaultVendor. It is meant to run whenever offered options are
// edited, so that an offer the vendor cannot produce is never published.
func ValidateExternalConsistency(ctx context.Context, src ExternalSource, internal options.OptionSet) error {
	v, err := NewBoardOptionValidatorForVendor(ctx, src, DefaultVendor)
	if err != nil {
		return err
	}
	return v.Validate(internal)
}
