package cli

import (
	"context"

	"github.com/pcbshop/boardopts/pkg/api"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the board options API server",
		Description: `Starts the same server as pcbshopd. Configuration is read from the
environment: PORT, LOG_LEVEL, PCBSHOP_VENDOR and PCBSHOP_OPTIONS_SOURCE.`,
		Action: func(_ context.Context, _ *cli.Command) error {
			return api.Serve()
		},
	}
}
