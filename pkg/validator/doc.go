// Package validator checks board attributes and offered options for consistency.
//
// # Overview
//
// Two validators operate over options.OptionSet snapshots:
//
//   - AttributeValidator checks a customer's chosen attributes against the
//     options the shop currently offers. It runs when a board is created.
//   - BoardOptionValidator checks the shop's offered options against the
//     options an upstream fabrication vendor supports. It runs whenever the
//     offer is edited, and again before the offer is shown to customers.
//
// # Rules
//
// AttributeValidator, per attribute label:
//   - the label must be offered (ErrOptionNotOffered)
//   - a choice value must be a member of the offered choices, with the same
//     scalar kind: 1.0, "1" and true never match the integer 1 (ErrOutOfChoices)
//   - a range value must be a number within [min, max] (ErrOutOfRange)
//
// BoardOptionValidator, per internal option label:
//   - the label must exist in the external options (ErrMissingLabel)
//   - internal choices must be a non-empty, single-kind, duplicate-free list
//     and a subset of the external choices (ErrChoiceNotAvailable)
//   - an internal range must have numeric bounds, min <= max, and lie within
//     the external range (ErrSpanNotContained)
//   - both sides must be the same variant (ErrAttributeTypeMismatch)
//
// A schema that is neither a choice set nor a range yields ErrMalformedSchema.
// Numeric comparisons mix integers and floats by value.
//
// # Usage
//
//	v := validator.NewAttributeValidator(offered)
//	if err := v.Validate(attrs); err != nil {
//	    var ve *validator.ValidationError
//	    if errors.As(err, &ve) {
//	        fmt.Println(ve.Kind, ve.Label)
//	    }
//	}
//
// # Error Handling
//
// Validation is fail-fast: labels are processed in sorted order and the first
// violation is returned as a *ValidationError. Every ValidationError unwraps
// to one of the package's sentinel errors, so errors.Is(err, ErrOutOfRange)
// works. Validators never retry and never fail transiently; the same inputs
// always give the same result.
//
// # Concurrency
//
// Validators copy the option set they are built with and are safe for
// concurrent use. Any I/O happens in the Source-based constructors, before
// validation starts.
package validator
