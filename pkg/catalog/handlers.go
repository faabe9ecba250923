package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	pcberrors "github.com/pcbshop/boardopts/pkg/errors"
	"github.com/pcbshop/boardopts/pkg/options"
	"github.com/pcbshop/boardopts/pkg/serializer"
	"github.com/pcbshop/boardopts/pkg/server"
	"github.com/pcbshop/boardopts/pkg/validator"
)

// ValidationResponse is returned for an accepted board.
type ValidationResponse struct {
	Valid      bool `json:"valid" yaml:"valid"`
	Attributes int  `json:"attributes" yaml:"attributes"`
}

// SnapshotResponse is returned after a snapshot was written.
type SnapshotResponse struct {
	ID      string    `json:"id" yaml:"id"`
	Kind    string    `json:"kind" yaml:"kind"`
	Vendor  string    `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Created time.Time `json:"created" yaml:"created"`
	Labels  []string  `json:"labels" yaml:"labels"`
}

// VendorsResponse lists vendors with external options.
type VendorsResponse struct {
	Vendors []string `json:"vendors" yaml:"vendors"`
}

// Handlers returns the catalog routes for server.WithHandler.
func (c *Catalog) Handlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/boards/validate":          c.HandleValidateBoard,
		"/v1/options":                  c.HandleOptions,
		"/v1/vendors":                  c.HandleVendors,
		"/v1/vendors/{vendor}/options": c.HandleVendorOptions,
	}
}

// HandleValidateBoard checks a board's attributes against the current offer.
//
//	POST /v1/boards/validate
//	{"dimensionX": 42, "differentDesigns": 1}
//
// A body that repeats an attribute is rejected with 400.
func (c *Catalog) HandleValidateBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	attrs, err := options.ParseAttributeSet(body)
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, pcberrors.ErrCodeInvalidRequest,
			"Invalid board attributes", false, map[string]any{"error": err.Error()})
		return
	}

	if err := c.ValidateAttributes(ctx, attrs); err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			writeValidationError(w, r, ve)
			return
		}
		writeMaintenance(w, r)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, ValidationResponse{Valid: true, Attributes: len(attrs)})
}

// HandleOptions serves the current offer (GET) and publishes a new one (PUT).
func (c *Catalog) HandleOptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		opts, err := c.CurrentOptions(ctx)
		if err != nil {
			writeMaintenance(w, r)
			return
		}
		serializer.Respond(w, r, http.StatusOK, opts)

	case http.MethodPut:
		opts, ok := readOptionSet(w, r)
		if !ok {
			return
		}
		snap, err := c.PublishOffered(ctx, opts)
		if err != nil {
			writeCatalogError(w, r, err, "Failed to publish offered options")
			return
		}
		serializer.RespondJSON(w, http.StatusCreated, snapshotResponse(snap.ID, string(snap.Kind), snap.Vendor, snap.Created, snap.Options))

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

// HandleVendors lists vendors with recorded external options.
func (c *Catalog) HandleVendors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	vendors, err := c.Vendors(ctx)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to list vendors", nil)
		return
	}
	serializer.Respond(w, r, http.StatusOK, VendorsResponse{Vendors: vendors})
}

// HandleVendorOptions reads (GET) or records (PUT) a vendor's external options.
func (c *Catalog) HandleVendorOptions(w http.ResponseWriter, r *http.Request) {
	vendor := strings.TrimSpace(r.PathValue("vendor"))
	if vendor == "" {
		server.WriteError(w, r, http.StatusBadRequest, pcberrors.ErrCodeInvalidRequest,
			"Vendor is required", false, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		snap, err := c.ExternalOptions(ctx, vendor)
		if err != nil {
			server.WriteErrorFromErr(w, r, err, "Failed to load external options", nil)
			return
		}
		serializer.Respond(w, r, http.StatusOK, snap.Options)

	case http.MethodPut:
		opts, ok := readOptionSet(w, r)
		if !ok {
			return
		}
		snap, err := c.RecordExternal(ctx, vendor, opts)
		if err != nil {
			writeCatalogError(w, r, err, "Failed to record external options")
			return
		}
		serializer.RespondJSON(w, http.StatusCreated, snapshotResponse(snap.ID, string(snap.Kind), snap.Vendor, snap.Created, snap.Options))

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func snapshotResponse(id, kind, vendor string, created time.Time, opts options.OptionSet) SnapshotResponse {
	return SnapshotResponse{ID: id, Kind: kind, Vendor: vendor, Created: created, Labels: opts.Labels()}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, pcberrors.ErrCodeInvalidRequest,
			"Failed to read request body", false, map[string]any{"error": err.Error()})
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		server.WriteError(w, r, http.StatusBadRequest, pcberrors.ErrCodeInvalidRequest,
			"Request body is empty", false, nil)
		return nil, false
	}
	return body, true
}

func readOptionSet(w http.ResponseWriter, r *http.Request) (options.OptionSet, bool) {
	body, ok := readBody(w, r)
	if !ok {
		return nil, false
	}
	opts, err := options.ParseOptionSet(body)
	if err != nil {
		details := map[string]any{"error": err.Error()}
		var se *options.SchemaError
		if errors.As(err, &se) {
			details["kind"] = string(validator.KindMalformedSchema)
			if se.Label != "" {
				details["label"] = se.Label
			}
		}
		server.WriteError(w, r, http.StatusBadRequest, pcberrors.ErrCodeInvalidRequest,
			"Invalid option set", false, details)
		return nil, false
	}
	return opts, true
}

// writeCatalogError reports validation failures as 400 and everything else
// according to its structured error code.
func writeCatalogError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		writeValidationError(w, r, ve)
		return
	}
	server.WriteErrorFromErr(w, r, err, fallback, nil)
}

func writeValidationError(w http.ResponseWriter, r *http.Request, ve *validator.ValidationError) {
	server.WriteError(w, r, http.StatusBadRequest, pcberrors.ErrCodeInvalidRequest,
		ve.Error(), false, ve.Details())
}

func writeMaintenance(w http.ResponseWriter, r *http.Request) {
	server.WriteError(w, r, http.StatusServiceUnavailable, pcberrors.ErrCodeUnavailable,
		MaintenanceMessage, true, nil)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	server.WriteError(w, r, http.StatusMethodNotAllowed, pcberrors.ErrCodeMethodNotAllowed,
		"Method not allowed", false, map[string]any{"method": r.Method})
}
