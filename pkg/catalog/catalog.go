package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pcbshop/boardopts/pkg/defaults"
	pcberrors "github.com/pcbshop/boardopts/pkg/errors"
	"github.com/pcbshop/boardopts/pkg/options"
	"github.com/pcbshop/boardopts/pkg/store"
	"github.com/pcbshop/boardopts/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRequestTimeout bounds store access for a single request.
	DefaultRequestTimeout = defaults.HandlerTimeout

	// MaintenanceMessage is shown to customers when the offer cannot be served.
	MaintenanceMessage = "We are currently maintaining our offer. Please try again later."
)

// Catalog runs the option workflows against a snapshot store.
type Catalog struct {
	store         store.Store
	vendor        string
	timeout       time.Duration
	validatorOpts []validator.Option
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithVendor sets the vendor whose external options bound the offer.
// An empty name keeps validator.DefaultVendor.
func WithVendor(vendor string) Option {
	return func(c *Catalog) {
		if vendor != "" {
			c.vendor = vendor
		}
	}
}

// WithTimeout sets the per-request timeout of the HTTP handlers.
func WithTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithValidatorOptions passes options to every validator the catalog builds.
func WithValidatorOptions(opts ...validator.Option) Option {
	return func(c *Catalog) {
		c.validatorOpts = append(c.validatorOpts, opts...)
	}
}

// New creates a Catalog over st.
func New(st store.Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:   st,
		vendor:  validator.DefaultVendor,
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Vendor returns the vendor used to bound the offer.
func (c *Catalog) Vendor() string {
	return c.vendor
}

// ValidateAttributes checks attrs against the latest offered options.
// A violation is returned as a *validator.ValidationError.
func (c *Catalog) ValidateAttributes(ctx context.Context, attrs options.AttributeSet) error {
	start := time.Now()

	v, err := validator.NewAttributeValidatorFromSource(ctx, store.Offered(c.store), c.validatorOpts...)
	if err != nil {
		observeValidation(validatorAttribute, resultError, start)
		return err
	}

	err = v.Validate(attrs)
	observeValidation(validatorAttribute, resultOf(err), start)
	if err != nil {
		slog.Warn("board attributes rejected", "error", err)
	}
	return err
}

// PublishOffered validates opts against the vendor's latest external options
// and publishes them as the new offer. Nothing is written on failure.
func (c *Catalog) PublishOffered(ctx context.Context, opts options.OptionSet) (*store.Snapshot, error) {
	start := time.Now()

	v, err := validator.NewBoardOptionValidatorForVendor(ctx, store.External(c.store), c.vendor, c.validatorOpts...)
	if err != nil {
		observeValidation(validatorBoard, resultError, start)
		return nil, err
	}

	err = v.Validate(opts)
	observeValidation(validatorBoard, resultOf(err), start)
	if err != nil {
		slog.Warn("offered options rejected", "vendor", c.vendor, "error", err)
		return nil, err
	}

	snap, err := c.store.PublishOffered(ctx, opts)
	if err != nil {
		return nil, err
	}
	snapshotsPublishedTotal.WithLabelValues(string(store.KindOffered)).Inc()
	slog.Info("offered options published", "id", snap.ID, "vendor", c.vendor, "labels", len(snap.Options))
	return snap, nil
}

// CurrentOptions returns the latest offered options after revalidating them
// against the vendor's latest external options.
func (c *Catalog) CurrentOptions(ctx context.Context) (options.OptionSet, error) {
	start := time.Now()

	var offered, external *store.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offered, err = c.store.LatestOffered(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		external, err = c.store.LatestExternal(gctx, c.vendor)
		return err
	})
	if err := g.Wait(); err != nil {
		observeValidation(validatorBoard, resultError, start)
		return nil, err
	}

	err := validator.NewBoardOptionValidator(external.Options, c.validatorOpts...).Validate(offered.Options)
	observeValidation(validatorBoard, resultOf(err), start)
	if err != nil {
		slog.Warn("published offer no longer supported by vendor",
			"offered_id", offered.ID,
			"external_id", external.ID,
			"vendor", c.vendor,
			"error", err)
		return nil, err
	}
	return offered.Options, nil
}

// RecordExternal stores opts as the newest external options of vendor.
// Every option must be a well formed choice set or range.
func (c *Catalog) RecordExternal(ctx context.Context, vendor string, opts options.OptionSet) (*store.Snapshot, error) {
	if vendor == "" {
		return nil, pcberrors.New(pcberrors.ErrCodeInvalidRequest, "vendor is required")
	}
	if err := CheckOptionSet(opts); err != nil {
		return nil, err
	}

	snap, err := c.store.RecordExternal(ctx, vendor, opts)
	if err != nil {
		return nil, err
	}
	snapshotsPublishedTotal.WithLabelValues(string(store.KindExternal)).Inc()
	slog.Info("external options recorded", "id", snap.ID, "vendor", vendor, "labels", len(snap.Options))
	return snap, nil
}

// ExternalOptions returns the latest external options of vendor.
func (c *Catalog) ExternalOptions(ctx context.Context, vendor string) (*store.Snapshot, error) {
	return c.store.LatestExternal(ctx, vendor)
}

// Vendors lists vendors with recorded external options.
func (c *Catalog) Vendors(ctx context.Context) ([]string, error) {
	return c.store.Vendors(ctx)
}

// CheckOptionSet reports the first option, in label order, that is not a
// usable choice set or range.
func CheckOptionSet(opts options.OptionSet) error {
	for _, label := range opts.Labels() {
		var err error
		switch s := opts[label].(type) {
		case options.Choice:
			err = s.Check()
		case options.Range:
			err = s.Check()
		default:
			err = fmt.Errorf("unsupported schema type %T", s)
		}
		if err != nil {
			return &validator.ValidationError{
				Kind:   validator.KindMalformedSchema,
				Label:  label,
				Reason: err.Error(),
			}
		}
	}
	return nil
}

func resultOf(err error) string {
	var ve *validator.ValidationError
	switch {
	case err == nil:
		return resultValid
	case errors.As(err, &ve):
		return resultInvalid
	default:
		return resultError
	}
}
