package header

import (
	"fmt"
	"time"
)

var (
	ApiVersionDomain = "pcbshop.io"
	ApiVersionV1     = "v1"
)

// Kinds of documents written and read by pcbshop tooling.
const (
	KindOptionSnapshots = "OptionSnapshots"
	KindValidation      = "ValidationReport"
)

// Metadata keys set by Init.
const (
	MetadataCreated = "created-timestamp"
	MetadataVersion = "tool-version"
)

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair to the Header.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithKind sets the Kind field of the Header.
func WithKind(kind string) Option {
	return func(h *Header) {
		h.Kind = kind
	}
}

// WithAPIVersion sets the APIVersion field of the Header.
func WithAPIVersion(version string) Option {
	return func(h *Header) {
		h.APIVersion = version
	}
}

// New creates a Header with the provided options applied.
func New(opts ...Option) *Header {
	h := &Header{
		Metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Header carries the kind and version of a document, Kubernetes style.
type Header struct {
	// Kind is the type of the document.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// APIVersion is the schema version of the document.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`

	// Metadata contains free-form key-value pairs.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Init sets kind, the versioned API group and creation metadata.
// The API version has the form "<domain>/v1".
func (h *Header) Init(kind, version string) {
	h.Kind = kind
	h.APIVersion = APIVersion()
	h.Metadata = map[string]string{
		MetadataCreated: time.Now().UTC().Format(time.RFC3339),
	}
	if version != "" {
		h.Metadata[MetadataVersion] = version
	}
}

// Check reports an error if h does not describe a document of the given kind.
// An empty header is accepted so that hand-written files may omit it.
func (h *Header) Check(kind string) error {
	if h.Kind != "" && h.Kind != kind {
		return fmt.Errorf("unexpected document kind %q, want %q", h.Kind, kind)
	}
	if h.APIVersion != "" && h.APIVersion != APIVersion() {
		return fmt.Errorf("unsupported apiVersion %q, want %q", h.APIVersion, APIVersion())
	}
	return nil
}

// APIVersion returns the current document API version.
func APIVersion() string {
	return ApiVersionDomain + "/" + ApiVersionV1
}
