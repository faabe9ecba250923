// Package serializer encodes values for CLI output and HTTP responses in
// JSON, YAML or a plain text table.
package serializer
