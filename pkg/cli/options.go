package cli

import (
	"context"
	"fmt"

	"github.com/pcbshop/boardopts/pkg/catalog"
	"github.com/pcbshop/boardopts/pkg/serializer"
	"github.com/pcbshop/boardopts/pkg/store"
	"github.com/urfave/cli/v3"
)

func optionsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "options",
		EnableShellCompletion: true,
		Usage:                 "Print the latest offered or external options",
		Description: `Prints the latest option snapshot of a snapshot source.

With --kind offered (the default) the newest offered snapshot is printed.
Adding --verify first checks that it is still supported by the vendor's
newest external options, as the API server does before serving it.
With --kind external the newest external snapshot of --vendor is printed.

The table format prints one row per option label.

Examples:

  pcbctl options
  pcbctl options --kind external --vendor "Example PCB Shop" --format table
  pcbctl options --source cm://pcbshop --verify`,
		Flags: []cli.Flag{
			sourceFlag(),
			&cli.StringFlag{
				Name:  "kind",
				Value: string(store.KindOffered),
				Usage: "snapshot kind (offered, external)",
			},
			vendorFlag(),
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "check the offered options against the vendor's external options",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, err := store.Open(ctx, cmd.String("source"))
			if err != nil {
				return fmt.Errorf("failed to open option snapshots: %w", err)
			}
			c := catalog.New(st, catalog.WithVendor(cmd.String("vendor")))

			var snap *store.Snapshot
			switch store.SnapshotKind(cmd.String("kind")) {
			case store.KindOffered:
				if cmd.Bool("verify") {
					if _, err := c.CurrentOptions(ctx); err != nil {
						return err
					}
				}
				snap, err = st.LatestOffered(ctx)
			case store.KindExternal:
				snap, err = c.ExternalOptions(ctx, c.Vendor())
			default:
				return fmt.Errorf("unknown snapshot kind %q, expected %s or %s",
					cmd.String("kind"), store.KindOffered, store.KindExternal)
			}
			if err != nil {
				return err
			}

			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			if format == serializer.FormatTable {
				return writeOutput(ctx, cmd, snap.Options)
			}
			return writeOutput(ctx, cmd, snap)
		},
	}
}
