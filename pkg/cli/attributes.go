package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pcbshop/boardopts/pkg/catalog"
	"github.com/pcbshop/boardopts/pkg/store"
	"github.com/pcbshop/boardopts/pkg/validator"
	"github.com/urfave/cli/v3"
)

func attributesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "attributes",
		EnableShellCompletion: true,
		Usage:                 "Validate board attributes against the offered options",
		Description: `Checks a customer's board attributes against the offered board options.

The offered options are either read from a file (--options) or taken from the
latest offered snapshot of a snapshot source (--source). A ValidationReport is
written to --output; it names the first violation found, if any.

Examples:

  pcbctl attributes --attributes board.yaml
  pcbctl attributes -a board.json --options offered.yaml --format table
  pcbctl attributes -a board.yaml --source cm://pcbshop --fail-on-error`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "attributes",
				Aliases:  []string{"a"},
				Usage:    "board attributes file (YAML or JSON)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "options",
				Usage: "offered options file, overrides --source",
			},
			sourceFlag(),
			failOnErrorFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			attrs, err := readAttributeSetFile(cmd.String("attributes"))
			if err != nil {
				return err
			}

			report := newReport(subjectAttributes)
			if path := cmd.String("options"); path != "" {
				offered, rerr := readOptionSetFile(path)
				if rerr != nil {
					return rerr
				}
				err = validator.NewAttributeValidator(offered).Validate(attrs)
			} else {
				st, oerr := store.Open(ctx, cmd.String("source"))
				if oerr != nil {
					return fmt.Errorf("failed to open option snapshots: %w", oerr)
				}
				err = catalog.New(st).ValidateAttributes(ctx, attrs)
			}
			if err = report.record(err); err != nil {
				return err
			}

			slog.Debug("attributes validated", "count", len(attrs), "valid", report.Valid)
			if err := writeOutput(ctx, cmd, report); err != nil {
				return err
			}
			return report.result(cmd.Bool("fail-on-error"))
		},
	}
}
