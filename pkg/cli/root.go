package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pcbshop/boardopts/pkg/logging"
	"github.com/pcbshop/boardopts/pkg/serializer"
	"github.com/pcbshop/boardopts/pkg/server"
	"github.com/pcbshop/boardopts/pkg/store"
	"github.com/pcbshop/boardopts/pkg/validator"
	"github.com/urfave/cli/v3"
)

const name = "pcbctl"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   "output format (json, yaml, table)",
	}
}

func sourceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "source",
		Aliases: []string{"s"},
		Value:   store.SourceEmbedded,
		Usage:   "option snapshot source: embedded, cm://NAMESPACE or a snapshot file",
		Sources: cli.EnvVars(server.EnvOptionsSource),
	}
}

func vendorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "vendor",
		Usage:   "vendor whose external options bound the offer",
		Value:   validator.DefaultVendor,
		Sources: cli.EnvVars(server.EnvVendor),
	}
}

func failOnErrorFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "fail-on-error",
		Usage: "exit non-zero when validation fails",
	}
}

// Execute runs the pcbctl command line and exits with a non-zero code on failure.
func Execute() {
	if err := newRootCmd().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Validate and manage PCB board options",
		Version:               fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		EnableShellCompletion: true,
		ShellComplete:         commandLister,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "write logs as JSON",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := os.Getenv(server.EnvLogLevel)
			if cmd.Bool("debug") {
				level = "debug"
			}
			if cmd.Bool("log-json") {
				logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
			} else {
				logging.SetDefaultCLILogger(level)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			attributesCmd(),
			offerCmd(),
			optionsCmd(),
			recordCmd(),
			vendorsCmd(),
			serveCmd(),
		},
	}
}

// commandLister prints visible sub-command names for shell completion.
func commandLister(_ context.Context, cmd *cli.Command) {
	if cmd == nil {
		return
	}
	for _, c := range cmd.Commands {
		if c.Hidden {
			continue
		}
		fmt.Println(c.Name)
	}
}

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 2
	}
	return 1
}
