package serializer

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/yaml"
)

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	respond(w, statusCode, ContentTypeJSON, func(buf *bytes.Buffer) error {
		return json.NewEncoder(buf).Encode(data)
	})
}

// RespondYAML writes data as YAML with the given status code.
func RespondYAML(w http.ResponseWriter, statusCode int, data any) {
	respond(w, statusCode, ContentTypeYAML, func(buf *bytes.Buffer) error {
		enc := yaml.NewEncoder(buf)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	})
}

// Respond writes data as YAML when the request accepts YAML before JSON,
// and as JSON otherwise.
func Respond(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	if prefersYAML(r) {
		RespondYAML(w, statusCode, data)
		return
	}
	RespondJSON(w, statusCode, data)
}

// respond encodes into a buffer first so that an encoding failure can still
// produce a clean 500 instead of a partial body.
func respond(w http.ResponseWriter, statusCode int, contentType string, encode func(*bytes.Buffer) error) {
	buf := &bytes.Buffer{}
	if err := encode(buf); err != nil {
		slog.Error("response encoding failed", "content_type", contentType, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}

func prefersYAML(r *http.Request) bool {
	if r == nil {
		return false
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case ContentTypeYAML, "application/x-yaml", "text/yaml":
			return true
		case ContentTypeJSON:
			return false
		}
	}
	return false
}
