package options

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// OptionSet maps attribute labels to their option descriptions. The same shape
// serves both the shop's offered options and a vendor's external options.
type OptionSet map[string]OptionSchema

// AttributeSet maps attribute labels to the concrete values of one board.
type AttributeSet map[string]Value

// Labels returns the labels of s in sorted order.
func (s OptionSet) Labels() []string {
	return sortedKeys(s)
}

// Clone returns a deep copy of s.
func (s OptionSet) Clone() OptionSet {
	if s == nil {
		return nil
	}
	out := make(OptionSet, len(s))
	for label, schema := range s {
		out[label] = cloneSchema(schema)
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (s OptionSet) MarshalJSON() ([]byte, error) {
	raw, err := s.toAny()
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *OptionSet) UnmarshalJSON(data []byte) error {
	var root Value
	if err := root.UnmarshalJSON(data); err != nil {
		return err
	}
	return s.fromValue(root)
}

// MarshalYAML implements yaml.Marshaler.
func (s OptionSet) MarshalYAML() (any, error) {
	return s.toAny()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *OptionSet) UnmarshalYAML(node *yaml.Node) error {
	root, err := valueFromNode(node)
	if err != nil {
		return err
	}
	return s.fromValue(root)
}

func (s OptionSet) toAny() (map[string]any, error) {
	raw := make(map[string]any, len(s))
	for label, schema := range s {
		entry, err := schemaToAny(label, schema)
		if err != nil {
			return nil, err
		}
		raw[label] = entry
	}
	return raw, nil
}

func (s *OptionSet) fromValue(root Value) error {
	if root.Kind() == KindNull {
		*s = OptionSet{}
		return nil
	}
	if root.Kind() != KindObject {
		return &SchemaError{Reason: fmt.Sprintf("option set must be an object, got %s", root.Kind())}
	}
	out := make(OptionSet, len(root.obj))
	for _, label := range root.Keys() {
		schema, err := schemaFromValue(label, root.obj[label])
		if err != nil {
			return err
		}
		out[label] = schema
	}
	*s = out
	return nil
}

// Labels returns the labels of a in sorted order.
func (a AttributeSet) Labels() []string {
	return sortedKeys(a)
}

// Clone returns a copy of a.
func (a AttributeSet) Clone() AttributeSet {
	if a == nil {
		return nil
	}
	out := make(AttributeSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AttributeSet) UnmarshalJSON(data []byte) error {
	var root Value
	if err := root.UnmarshalJSON(data); err != nil {
		return err
	}
	return a.fromValue(root)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *AttributeSet) UnmarshalYAML(node *yaml.Node) error {
	root, err := valueFromNode(node)
	if err != nil {
		return err
	}
	return a.fromValue(root)
}

func (a *AttributeSet) fromValue(root Value) error {
	if root.Kind() == KindNull {
		*a = AttributeSet{}
		return nil
	}
	if root.Kind() != KindObject {
		return fmt.Errorf("attributes must be an object, got %s", root.Kind())
	}
	out := make(AttributeSet, len(root.obj))
	for k, v := range root.obj {
		out[k] = v
	}
	*a = out
	return nil
}

// ParseOptionSet decodes an option set from JSON or YAML bytes.
// JSON is a subset of YAML, so a single YAML decode covers both.
// A key repeated within one object is rejected, for JSON input too, unlike
// json.Unmarshal which keeps the last value.
func ParseOptionSet(data []byte) (OptionSet, error) {
	var s OptionSet
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s == nil {
		s = OptionSet{}
	}
	return s, nil
}

// ParseAttributeSet decodes an attribute set from JSON or YAML bytes.
// As with ParseOptionSet, a repeated key is an error rather than last-wins.
func ParseAttributeSet(data []byte) (AttributeSet, error) {
	var a AttributeSet
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	if a == nil {
		a = AttributeSet{}
	}
	return a, nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
