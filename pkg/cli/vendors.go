package cli

import (
	"context"
	"fmt"

	"github.com/pcbshop/boardopts/pkg/catalog"
	"github.com/pcbshop/boardopts/pkg/store"
	"github.com/urfave/cli/v3"
)

func vendorsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "vendors",
		EnableShellCompletion: true,
		Usage:                 "List vendors with recorded external options",
		Flags: []cli.Flag{
			sourceFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, err := store.Open(ctx, cmd.String("source"))
			if err != nil {
				return fmt.Errorf("failed to open option snapshots: %w", err)
			}
			vendors, err := catalog.New(st).Vendors(ctx)
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, catalog.VendorsResponse{Vendors: vendors})
		},
	}
}
