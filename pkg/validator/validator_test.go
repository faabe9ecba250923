package validator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/pcbshop/boardopts/pkg/options"
)

func mustOptions(t *testing.T, raw string) options.OptionSet {
	t.Helper()
	set, err := options.ParseOptionSet([]byte(raw))
	if err != nil {
		t.Fatalf("failed to parse options %s: %v", raw, err)
	}
	return set
}

func mustAttributes(t *testing.T, raw string) options.AttributeSet {
	t.Helper()
	attrs, err := options.ParseAttributeSet([]byte(raw))
	if err != nil {
		t.Fatalf("failed to parse attributes %s: %v", raw, err)
	}
	return attrs
}

const referenceOptions = `{
  "differentDesigns": {"choices": [1, 2, 3]},
  "castellatedHoles": {"choices": ["yes", "no"]},
  "dimensionX": {"range": {"min": 10, "max": 100}}
}`

func TestBoardOptionValidator_ValidOptions(t *testing.T) {
	v := NewBoardOptionValidator(mustOptions(t, referenceOptions))

	tests := []struct {
		name     string
		designs  string
		holes    string
		min, max string
	}{
		{"identical", `[1, 2, 3]`, `["yes", "no"]`, "10", "100"},
		{"single choice", `[1]`, `["yes", "no"]`, "10", "100"},
		{"narrower range", `[1, 2]`, `["yes", "no"]`, "30", "80"},
		{"point range", `[1, 2, 3]`, `["yes", "no"]`, "50", "50"},
		{"subset of strings", `[1, 2, 3]`, `["yes"]`, "30", "80"},
		{"float bounds inside int span", `[3]`, `["no"]`, "10.5", "99.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			internal := mustOptions(t, fmt.Sprintf(`{
  "differentDesigns": {"choices": %s},
  "castellatedHoles": {"choices": %s},
  "dimensionX": {"range": {"min": %s, "max": %s}}
}`, tt.designs, tt.holes, tt.min, tt.max))

			if err := v.Validate(internal); err != nil {
				t.Fatalf("valid internal options rejected: %v", err)
			}
		})
	}
}

func TestBoardOptionValidator_InvalidOptions(t *testing.T) {
	v := NewBoardOptionValidator(mustOptions(t, referenceOptions))

	tests := []struct {
		name     string
		designs  string
		holes    string
		min, max string
		want     error
	}{
		{"empty choice list", `[]`, `["yes", "no"]`, "10", "100", ErrChoiceNotAvailable},
		{"unavailable value", `[1, 2, 4]`, `["yes", "no"]`, "10", "100", ErrChoiceNotAvailable},
		{"range minimum too low", `[1, 2, 3]`, `["yes", "no"]`, "9", "100", ErrSpanNotContained},
		{"range maximum too high", `[1, 2, 3]`, `["yes", "no"]`, "10", "101", ErrSpanNotContained},
		{"minimum larger than maximum", `[1, 2, 3]`, `["yes", "no"]`, "50", "40", ErrSpanNotContained},
		{"range bounds not numbers", `[1, 2, 3]`, `["yes", "no"]`, "[10, 11]", "[99, 100]", ErrSpanNotContained},
		{"range bounds are strings", `[1, 2, 3]`, `["yes", "no"]`, `"10"`, `"100"`, ErrSpanNotContained},
		{"mixed choice types", `[1, "2", 3]`, `["yes", "no"]`, "10", "100", ErrChoiceNotAvailable},
		{"only empty string", `[1]`, `[""]`, "10", "100", ErrChoiceNotAvailable},
		{"contains empty string", `[1]`, `["yes", "no", ""]`, "10", "100", ErrChoiceNotAvailable},
		{"duplicate values", `[1]`, `["yes", "no", "no"]`, "10", "100", ErrChoiceNotAvailable},
		{"float where int offered", `[1.0]`, `["yes"]`, "10", "100", ErrChoiceNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			internal := mustOptions(t, fmt.Sprintf(`{
  "differentDesigns": {"choices": %s},
  "castellatedHoles": {"choices": %s},
  "dimensionX": {"range": {"min": %s, "max": %s}}
}`, tt.designs, tt.holes, tt.min, tt.max))

			err := v.Validate(internal)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBoardOptionValidator_ChoicesNotAListFailsAtDecode(t *testing.T) {
	_, err := options.ParseOptionSet([]byte(`{"differentDesigns": {"choices": 1}}`))
	if !errors.Is(err, ErrMalformedSchema) {
		t.Fatalf("expected ErrMalformedSchema, got %v", err)
	}
}

func TestBoardOptionValidator_StructuralErrors(t *testing.T) {
	external := options.OptionSet{
		"layers":     options.NewChoice(1, 2, 3),
		"dimensionX": options.NewRange(10, 100),
		"broken":     nil,
	}
	v := NewBoardOptionValidator(external)

	tests := []struct {
		name     string
		internal options.OptionSet
		kind     Kind
		label    string
	}{
		{"missing label", options.OptionSet{"dimensionx": options.NewRange(10, 20)}, KindMissingLabel, "dimensionx"},
		{"choice vs range", options.OptionSet{"layers": options.NewRange(1, 2)}, KindAttributeTypeMismatch, "layers"},
		{"range vs choice", options.OptionSet{"dimensionX": options.NewChoice(10)}, KindAttributeTypeMismatch, "dimensionX"},
		{"nil internal schema", options.OptionSet{"layers": nil}, KindMalformedSchema, "layers"},
		{"nil external schema", options.OptionSet{"broken": options.NewChoice(1)}, KindMalformedSchema, "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.internal)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if ve.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", ve.Kind, tt.kind)
			}
			if ve.Label != tt.label {
				t.Errorf("Label = %q, want %q", ve.Label, tt.label)
			}
		})
	}
}

func TestBoardOptionValidator_MissingLabelSuggestion(t *testing.T) {
	v := NewBoardOptionValidator(mustOptions(t, referenceOptions))

	err := v.Validate(options.OptionSet{"dimensionx": options.NewRange(10, 20)})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Suggestion != "dimensionX" {
		t.Errorf("Suggestion = %q, want dimensionX", ve.Suggestion)
	}

	quiet := NewBoardOptionValidator(mustOptions(t, referenceOptions), WithSuggestions(false))
	err = quiet.Validate(options.OptionSet{"dimensionx": options.NewRange(10, 20)})
	if !errors.As(err, &ve) || ve.Suggestion != "" {
		t.Errorf("expected no suggestion, got %v", err)
	}
}

// Offered choices and spans must be contained in the external ones.
func TestBoardOptionValidator_Containment(t *testing.T) {
	tests := []struct {
		name     string
		external string
		internal string
		want     error
		label    string
	}{
		{
			name:     "choice subset passes",
			external: `{"layers": {"choices": [1,2,3]}}`,
			internal: `{"layers": {"choices": [1,2]}}`,
		},
		{
			name:     "choice outside external fails",
			external: `{"layers": {"choices": [1,2,3]}}`,
			internal: `{"layers": {"choices": [1,4]}}`,
			want:     ErrChoiceNotAvailable,
			label:    "layers",
		},
		{
			name:     "span below external minimum fails",
			external: `{"dimensionX": {"range": {"min":10,"max":100}}}`,
			internal: `{"dimensionX": {"range": {"min":9,"max":100}}}`,
			want:     ErrSpanNotContained,
			label:    "dimensionX",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewBoardOptionValidator(mustOptions(t, tt.external))
			err := v.Validate(mustOptions(t, tt.internal))
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var ve *ValidationError
			if errors.As(err, &ve) && ve.Label != tt.label {
				t.Errorf("Label = %q, want %q", ve.Label, tt.label)
			}
		})
	}
}

func TestBoardOptionValidator_ShrinkingExternalFlipsResult(t *testing.T) {
	internal := options.OptionSet{
		"layers":     options.NewChoice(1, 2),
		"dimensionX": options.NewRange(10, 100),
	}

	exact := options.OptionSet{
		"layers":     options.NewChoice(1, 2),
		"dimensionX": options.NewRange(10, 100),
	}
	if err := NewBoardOptionValidator(exact).Validate(internal); err != nil {
		t.Fatalf("exact match rejected: %v", err)
	}

	fewerChoices := exact.Clone()
	fewerChoices["layers"] = options.NewChoice(1)
	if err := NewBoardOptionValidator(fewerChoices).Validate(internal); !errors.Is(err, ErrChoiceNotAvailable) {
		t.Errorf("removing a covered choice: expected ErrChoiceNotAvailable, got %v", err)
	}

	narrower := exact.Clone()
	narrower["dimensionX"] = options.NewRange(10, 99)
	if err := NewBoardOptionValidator(narrower).Validate(internal); !errors.Is(err, ErrSpanNotContained) {
		t.Errorf("narrowing the range: expected ErrSpanNotContained, got %v", err)
	}
}

func TestBoardOptionValidator_InvertedInternalRangeAlwaysRejected(t *testing.T) {
	internal := options.OptionSet{"dimensionX": options.NewRange(60, 40)}

	for _, external := range []options.Range{
		options.NewRange(10, 100),
		options.NewRange(40, 60),
		options.NewRange(-1e9, 1e9),
	} {
		v := NewBoardOptionValidator(options.OptionSet{"dimensionX": external})
		if err := v.Validate(internal); !errors.Is(err, ErrSpanNotContained) {
			t.Errorf("external %s: expected ErrSpanNotContained, got %v", external, err)
		}
	}
}

func TestAttributeValidator_ValidAttributes(t *testing.T) {
	v := NewAttributeValidator(mustOptions(t, referenceOptions))

	tests := []struct {
		name  string
		attrs string
	}{
		{"lower bounds", `{"differentDesigns": 1, "castellatedHoles": "yes", "dimensionX": 10}`},
		{"upper bounds", `{"differentDesigns": 3, "castellatedHoles": "no", "dimensionX": 100}`},
		{"middle", `{"differentDesigns": 2, "castellatedHoles": "yes", "dimensionX": 42}`},
		{"float within int range", `{"dimensionX": 42.5}`},
		{"empty attribute set", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.Validate(mustAttributes(t, tt.attrs)); err != nil {
				t.Fatalf("valid attributes rejected: %v", err)
			}
		})
	}
}

func TestAttributeValidator_InvalidAttributes(t *testing.T) {
	v := NewAttributeValidator(mustOptions(t, referenceOptions))

	tests := []struct {
		name    string
		designs string
		holes   string
		dimX    string
		want    error
	}{
		{"choice not offered", "0", `"yes"`, "42", ErrOutOfChoices},
		{"choice is empty string", "1", `""`, "42", ErrOutOfChoices},
		{"value out of range low", "1", `"yes"`, "9", ErrOutOfRange},
		{"value out of range high", "1", `"yes"`, "101", ErrOutOfRange},
		{"choice has wrong type float", "1.0", `"yes"`, "42", ErrOutOfChoices},
		{"choice has wrong type list", "[1]", `"yes"`, "42", ErrOutOfChoices},
		{"choice has wrong type str", `"1"`, `"yes"`, "42", ErrOutOfChoices},
		{"choice has wrong type int", "1", "1", "42", ErrOutOfChoices},
		{"choice has wrong type bool", "true", `"yes"`, "42", ErrOutOfChoices},
		{"value has wrong type str", "3", `"yes"`, `"42"`, ErrOutOfRange},
		{"value has wrong type list", "3", `"yes"`, "[42]", ErrOutOfRange},
		{"value is null", "3", `"yes"`, "null", ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := mustAttributes(t, fmt.Sprintf(
				`{"differentDesigns": %s, "castellatedHoles": %s, "dimensionX": %s}`,
				tt.designs, tt.holes, tt.dimX))

			err := v.Validate(attrs)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// Attribute values must be offered choices or lie within offered ranges, kinds included.
func TestAttributeValidator_MembershipAndBounds(t *testing.T) {
	tests := []struct {
		name    string
		offered string
		attrs   string
		want    error
	}{
		{"choice member", `{"color": {"choices": ["red","green"]}}`, `{"color": "red"}`, nil},
		{"above range", `{"dimensionX": {"range": {"min":10,"max":100}}}`, `{"dimensionX": 101}`, ErrOutOfRange},
		{"string against int choices", `{"layers": {"choices": [1,2,3]}}`, `{"layers": "2"}`, ErrOutOfChoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewAttributeValidator(mustOptions(t, tt.offered))
			err := v.Validate(mustAttributes(t, tt.attrs))
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAttributeValidator_TypeMismatchReason(t *testing.T) {
	v := NewAttributeValidator(mustOptions(t, `{"layers": {"choices": [1,2,3]}}`))

	err := v.Validate(mustAttributes(t, `{"layers": "2"}`))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Reason != "expected integer, got string" {
		t.Errorf("Reason = %q", ve.Reason)
	}
	if ve.Value == nil || ve.Value.Kind() != options.KindString {
		t.Errorf("Value = %v, want the rejected string", ve.Value)
	}
}

func TestAttributeValidator_NotOfferedAndMalformed(t *testing.T) {
	offered := options.OptionSet{
		"dimensionX": options.NewRange(10, 100),
		"inverted":   options.NewRange(100, 10),
		"textual":    options.NewRange("a", "z"),
		"empty":      nil,
	}
	v := NewAttributeValidator(offered)

	tests := []struct {
		name  string
		attrs options.AttributeSet
		kind  Kind
	}{
		{"unknown label", options.AttributeSet{"dimensionZ": options.Int(5)}, KindOptionNotOffered},
		{"nil schema", options.AttributeSet{"empty": options.Int(5)}, KindMalformedSchema},
		{"inverted offered range", options.AttributeSet{"inverted": options.Int(50)}, KindMalformedSchema},
		{"non-numeric offered range", options.AttributeSet{"textual": options.String("m")}, KindMalformedSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(v.Validate(tt.attrs))
			if !ok {
				t.Fatal("expected a ValidationError")
			}
			if kind != tt.kind {
				t.Errorf("Kind = %s, want %s", kind, tt.kind)
			}
		})
	}
}

func TestValidators_FailFastReportsFirstLabel(t *testing.T) {
	v := NewAttributeValidator(mustOptions(t, referenceOptions))

	// castellatedHoles sorts before dimensionX, both are invalid.
	err := v.Validate(mustAttributes(t, `{"dimensionX": 1000, "castellatedHoles": "maybe"}`))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Label != "castellatedHoles" || ve.Kind != KindOutOfChoices {
		t.Errorf("got %s on %q, want out_of_choices on castellatedHoles", ve.Kind, ve.Label)
	}

	b := NewBoardOptionValidator(mustOptions(t, referenceOptions))
	err = b.Validate(mustOptions(t, `{
  "dimensionX": {"range": {"min": 0, "max": 1000}},
  "differentDesigns": {"choices": [7]},
  "zzz": {"choices": [1]}
}`))
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Label != "differentDesigns" || ve.Kind != KindChoiceNotAvailable {
		t.Errorf("got %s on %q, want choice on differentDesigns", ve.Kind, ve.Label)
	}
}

func TestValidators_DoNotShareInputMaps(t *testing.T) {
	offered := options.OptionSet{"layers": options.NewChoice(1, 2)}
	v := NewAttributeValidator(offered)

	offered["layers"] = options.NewChoice(9)
	delete(offered, "layers")

	if err := v.Validate(options.AttributeSet{"layers": options.Int(1)}); err != nil {
		t.Fatalf("validator observed caller mutation: %v", err)
	}
}

func TestValidators_ConcurrentUse(t *testing.T) {
	attrValidator := NewAttributeValidator(mustOptions(t, referenceOptions))
	boardValidator := NewBoardOptionValidator(mustOptions(t, referenceOptions))
	good := mustAttributes(t, `{"differentDesigns": 2, "dimensionX": 50}`)
	bad := mustAttributes(t, `{"differentDesigns": 2, "dimensionX": 500}`)
	internal := mustOptions(t, `{"dimensionX": {"range": {"min": 20, "max": 30}}}`)

	var wg sync.WaitGroup
	errs := make(chan error, 300)
	for i := 0; i < 100; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			errs <- attrValidator.Validate(good)
		}()
		go func() {
			defer wg.Done()
			if err := attrValidator.Validate(bad); !errors.Is(err, ErrOutOfRange) {
				errs <- fmt.Errorf("expected ErrOutOfRange, got %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			errs <- boardValidator.Validate(internal)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestNewAttributeValidatorFromSource(t *testing.T) {
	offered := mustOptions(t, referenceOptions)
	src := OfferedSourceFunc(func(_ context.Context) (options.OptionSet, error) {
		return offered, nil
	})

	v, err := NewAttributeValidatorFromSource(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(mustAttributes(t, `{"dimensionX": 42}`)); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	boom := errors.New("store offline")
	failing := OfferedSourceFunc(func(_ context.Context) (options.OptionSet, error) {
		return nil, boom
	})
	if _, err := NewAttributeValidatorFromSource(context.Background(), failing); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}

	if _, err := NewAttributeValidatorFromSource(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestNewBoardOptionValidatorForVendor(t *testing.T) {
	snapshots := map[string]options.OptionSet{
		DefaultVendor: mustOptions(t, `{"layers": {"choices": [1, 2]}}`),
		"Other Fab":   mustOptions(t, `{"layers": {"choices": [1, 2, 4, 6]}}`),
	}
	var requested []string
	src := ExternalSourceFunc(func(_ context.Context, vendor string) (options.OptionSet, error) {
		requested = append(requested, vendor)
		set, ok := snapshots[vendor]
		if !ok {
			return nil, fmt.Errorf("unknown vendor %q", vendor)
		}
		return set, nil
	})

	v, err := NewBoardOptionValidatorForVendor(context.Background(), src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Vendor() != DefaultVendor {
		t.Errorf("Vendor() = %q, want %q", v.Vendor(), DefaultVendor)
	}

	four := mustOptions(t, `{"layers": {"choices": [4]}}`)
	if err := v.Validate(four); !errors.Is(err, ErrChoiceNotAvailable) {
		t.Errorf("default vendor: expected ErrChoiceNotAvailable, got %v", err)
	}

	other, err := NewBoardOptionValidatorForVendor(context.Background(), src, "Other Fab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := other.Validate(four); err != nil {
		t.Errorf("other vendor: unexpected error %v", err)
	}

	if _, err := NewBoardOptionValidatorForVendor(context.Background(), src, "Nobody"); err == nil {
		t.Error("expected error for unknown vendor")
	}

	if err := ValidateExternalConsistency(context.Background(), src, four); !errors.Is(err, ErrChoiceNotAvailable) {
		t.Errorf("ValidateExternalConsistency: expected ErrChoiceNotAvailable, got %v", err)
	}

	want := []string{DefaultVendor, "Other Fab", "Nobody", DefaultVendor}
	if fmt.Sprint(requested) != fmt.Sprint(want) {
		t.Errorf("requested vendors = %v, want %v", requested, want)
	}
}

func TestValidationError_Details(t *testing.T) {
	v := NewAttributeValidator(mustOptions(t, referenceOptions))
	err := v.Validate(mustAttributes(t, `{"dimensionX": 101}`))

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	d := ve.Details()
	if d["kind"] != "out_of_range" || d["label"] != "dimensionX" {
		t.Errorf("unexpected details: %#v", d)
	}
	if d["value"] != int64(101) || d["min"] != int64(10) || d["max"] != int64(100) {
		t.Errorf("unexpected bounds in details: %#v", d)
	}
	if got := ve.Error(); got != `101 is not in available range [10, 100] for attribute "dimensionX"` {
		t.Errorf("Error() = %q", got)
	}
}
