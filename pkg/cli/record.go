package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pcbshop/boardopts/pkg/catalog"
	"github.com/urfave/cli/v3"
)

func recordCmd() *cli.Command {
	return &cli.Command{
		Name:                  "record",
		EnableShellCompletion: true,
		Usage:                 "Record a vendor's external options",
		Description: `Stores a new external option snapshot for a vendor.

Every option must be a well formed choice list or range. The snapshot becomes
the vendor's latest external options; older snapshots are kept.

Examples:

  pcbctl record --vendor "Example PCB Shop" --options vendor.yaml --source snapshots.yaml
  pcbctl record --vendor Acme --options acme.json --source cm://pcbshop`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "vendor",
				Usage:    "vendor name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "options",
				Usage:    "external options file (YAML or JSON)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "source",
				Aliases:  []string{"s"},
				Usage:    "snapshot file or cm://NAMESPACE to record into",
				Required: true,
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := readOptionSetFile(cmd.String("options"))
			if err != nil {
				return err
			}

			uri := cmd.String("source")
			st, err := openWritableStore(ctx, uri)
			if err != nil {
				return fmt.Errorf("failed to open option snapshots: %w", err)
			}

			snap, err := catalog.New(st).RecordExternal(ctx, cmd.String("vendor"), opts)
			if err != nil {
				return err
			}

			slog.Info("external options recorded", "id", snap.ID, "vendor", snap.Vendor, "source", uri)
			return writeOutput(ctx, cmd, snap)
		},
	}
}
