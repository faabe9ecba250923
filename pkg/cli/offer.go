package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pcbshop/boardopts/pkg/catalog"
	"github.com/pcbshop/boardopts/pkg/options"
	"github.com/pcbshop/boardopts/pkg/store"
	"github.com/pcbshop/boardopts/pkg/validator"
	"github.com/urfave/cli/v3"
)

func offerCmd() *cli.Command {
	return &cli.Command{
		Name:                  "offer",
		EnableShellCompletion: true,
		Usage:                 "Check offered board options against a vendor's external options",
		Description: `Checks that every offered board option is supported by the vendor.

Each offered label must exist in the vendor's external options with the same
type. Offered choices must be a subset of the external choices and offered
ranges must lie within the external range.

The external options are read from a file (--external) or from the latest
external snapshot of --vendor in a snapshot source (--source). With --publish
a valid offer is stored as the new offered snapshot of the source.

Examples:

  pcbctl offer --offered offered.yaml --external vendor.yaml
  pcbctl offer --offered offered.yaml --vendor "Example PCB Shop"
  pcbctl offer --offered offered.yaml --source snapshots.yaml --publish`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "offered",
				Usage:    "offered options file (YAML or JSON)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "external",
				Usage: "external options file, overrides --source",
			},
			sourceFlag(),
			vendorFlag(),
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "store a valid offer as the newest offered snapshot of --source",
			},
			failOnErrorFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			offered, err := readOptionSetFile(cmd.String("offered"))
			if err != nil {
				return err
			}

			report := newReport(subjectOffer)

			if path := cmd.String("external"); path != "" {
				if cmd.Bool("publish") {
					return errors.New("--publish requires --source, not --external")
				}
				external, rerr := readOptionSetFile(path)
				if rerr != nil {
					return rerr
				}
				if err := report.record(validator.NewBoardOptionValidator(external).Validate(offered)); err != nil {
					return err
				}
			} else if err := checkOfferFromSource(ctx, cmd, offered, report); err != nil {
				return err
			}

			if err := writeOutput(ctx, cmd, report); err != nil {
				return err
			}
			return report.result(cmd.Bool("fail-on-error"))
		},
	}
}

// checkOfferFromSource validates offered against the vendor's latest
// external snapshot of --source and publishes it when asked to.
func checkOfferFromSource(ctx context.Context, cmd *cli.Command, offered options.OptionSet, report *ValidationReport) error {
	uri := cmd.String("source")

	var (
		st  store.Store
		err error
	)
	if cmd.Bool("publish") {
		st, err = openWritableStore(ctx, uri)
	} else {
		st, err = store.Open(ctx, uri)
	}
	if err != nil {
		return fmt.Errorf("failed to open option snapshots: %w", err)
	}

	c := catalog.New(st, catalog.WithVendor(cmd.String("vendor")))
	report.Vendor = c.Vendor()

	if !cmd.Bool("publish") {
		v, verr := validator.NewBoardOptionValidatorForVendor(ctx, store.External(st), c.Vendor())
		if verr != nil {
			return verr
		}
		return report.record(v.Validate(offered))
	}

	snap, err := c.PublishOffered(ctx, offered)
	if err = report.record(err); err != nil {
		return err
	}
	if !report.Valid {
		return nil
	}
	report.SnapshotID = snap.ID
	slog.Info("offer published", "id", snap.ID, "source", uri)
	return nil
}
