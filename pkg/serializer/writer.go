package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding of a Writer.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// SupportedFormats returns the names of all output formats.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// IsUnknown reports whether f is not one of the supported formats.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// ParseFormat converts a user-supplied format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format %q, supported formats are %s",
			s, strings.Join(SupportedFormats(), ", "))
	}
	return f, nil
}

// Tabular is implemented by values that know how to render themselves as a
// table. Writers in FormatTable prefer it over generic field flattening.
type Tabular interface {
	TableHeader() []string
	TableRows() [][]string
}

// Serializer writes a value somewhere.
type Serializer interface {
	Serialize(ctx context.Context, data any) error
}

// Closer is implemented by serializers that hold an open file.
type Closer interface {
	Close() error
}

// Writer encodes values to an output stream.
type Writer struct {
	format Format
	out    io.Writer
	closer io.Closer
}

// NewWriter returns a Writer for out. Unknown formats fall back to JSON and a
// nil out means standard output.
func NewWriter(format Format, out io.Writer) *Writer {
	if format.IsUnknown() {
		slog.Warn("unknown output format, using json", "format", format)
		format = FormatJSON
	}
	if out == nil {
		out = os.Stdout
	}
	return &Writer{format: format, out: out}
}

// NewStdoutWriter returns a Writer for standard output.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout returns a Writer for path, or for standard output when
// path is empty or "-". Callers should Close the result when it is a Closer.
func NewFileWriterOrStdout(format Format, path string) (Serializer, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == StdoutURI {
		return NewStdoutWriter(format), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	w := NewWriter(format, f)
	w.closer = f
	return w, nil
}

// Close releases the underlying file, if any. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}

// Serialize writes data in the writer's format.
func (w *Writer) Serialize(_ context.Context, data any) error {
	switch w.format {
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return enc.Close()
	case FormatTable:
		return w.writeTable(data)
	default:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to json: %w", err)
		}
		return nil
	}
}

func (w *Writer) writeTable(data any) error {
	var (
		header []string
		rows   [][]string
	)
	if t, ok := data.(Tabular); ok {
		header, rows = append([]string(nil), t.TableHeader()...), t.TableRows()
	} else {
		header = []string{"field", "value"}
		flatten("", reflect.ValueOf(data), &rows)
	}

	upper := cases.Upper(language.English)
	for i, h := range header {
		header[i] = upper.String(h)
	}

	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	if len(rows) == 0 {
		fmt.Fprintln(tw, "<empty>")
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// flatten appends one key/value row per leaf of v. Nested keys are joined
// with dots and slice elements are written as [i].
func flatten(prefix string, v reflect.Value, rows *[][]string) {
	add := func(val string) { *rows = append(*rows, []string{prefix, val}) }

	if !v.IsValid() {
		add("<nil>")
		return
	}
	if v.Type().Implements(stringerType) && v.CanInterface() {
		if (v.Kind() != reflect.Ptr && v.Kind() != reflect.Interface) || !v.IsNil() {
			add(v.Interface().(fmt.Stringer).String())
			return
		}
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			add("<nil>")
			return
		}
		flatten(prefix, v.Elem(), rows)
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			flatten(join(prefix, t.Field(i).Name), v.Field(i), rows)
		}
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			flatten(join(prefix, fmt.Sprint(k.Interface())), v.MapIndex(k), rows)
		}
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 && prefix != "" {
			add("[]")
			return
		}
		for i := 0; i < v.Len(); i++ {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i), rows)
		}
	default:
		add(fmt.Sprint(v.Interface()))
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
