// Package options defines the board option data model shared by the validators.
//
// # Overview
//
// An OptionSet maps attribute labels to an OptionSchema describing the legal
// values of that attribute. A schema is one of two variants:
//
//   - Choice: a finite list of permitted scalars (strings, integers or floats)
//   - Range: an inclusive numeric interval with Min and Max bounds
//
// The same shape describes the options a shop currently offers and the options
// an upstream fabrication vendor supports. An AttributeSet holds the concrete
// values chosen for one board.
//
// # Wire Format
//
// Option sets are exchanged as JSON or YAML objects:
//
//	{
//	  "layers":     {"choices": [1, 2]},
//	  "color":      {"choices": ["green", "red"]},
//	  "dimensionX": {"range": {"min": 6, "max": 400}}
//	}
//
// Decoding keeps integers and floats apart (1 and 1.0 are different values)
// and fails with ErrMalformedSchema when an entry carries neither or both of
// the choices and range members, when choices is not a list, or when range
// lacks a bound. Element level problems such as empty or mixed-type choice
// lists are reported by Choice.Check and Range.Check.
//
// # Concurrency
//
// OptionSet and AttributeSet are plain maps. Treat them as value snapshots:
// use Clone before handing a set to code that may mutate it.
package options
