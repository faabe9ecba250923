package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pcbshop/boardopts/pkg/options"
	"github.com/pcbshop/boardopts/pkg/serializer"
	"github.com/urfave/cli/v3"
)

// parseOutputFormat extracts and validates the output format from CLI flags.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	return serializer.ParseFormat(cmd.String("format"))
}

// writeOutput serializes data to --output in --format.
func writeOutput(ctx context.Context, cmd *cli.Command, data any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	ser, err := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
	if err != nil {
		return err
	}
	if closer, ok := ser.(serializer.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				slog.Warn("failed to close output", "error", err)
			}
		}()
	}

	return ser.Serialize(ctx, data)
}

func readOptionSetFile(path string) (options.OptionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file %q: %w", path, err)
	}
	opts, err := options.ParseOptionSet(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse options file %q: %w", path, err)
	}
	return opts, nil
}

func readAttributeSetFile(path string) (options.AttributeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes file %q: %w", path, err)
	}
	attrs, err := options.ParseAttributeSet(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse attributes file %q: %w", path, err)
	}
	return attrs, nil
}
