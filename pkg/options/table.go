package options

import "strings"

// TableHeader implements serializer.Tabular.
func (s OptionSet) TableHeader() []string {
	return []string{"label", "type", "values"}
}

// TableRows implements serializer.Tabular with one row per label.
func (s OptionSet) TableRows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, label := range s.Labels() {
		switch x := s[label].(type) {
		case Choice:
			items := make([]string, len(x.Values))
			for i, v := range x.Values {
				items[i] = v.String()
			}
			rows = append(rows, []string{label, "choices", strings.Join(items, ", ")})
		case Range:
			rows = append(rows, []string{label, "range", x.String()})
		}
	}
	return rows
}
