package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/thinkscript-sync/internal/config"
)

var errConfigExists = errors.New("options file already exists, use --force to overwrite")

// newInitCommand returns the `init` subcommand writing a default options file.
func newInitCommand() *cobra.Command {
	var (
		path  string
		force bool
	)

	command := &cobra.Command{
		Use:   "init",
		Short: "Write a default options file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s: %w", path, errConfigExists)
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Options written to %s\n", path)

			return nil
		},
	}

	command.Flags().StringVarP(&path, "config", "c", config.DefaultConfigFilename, "path to the options file")
	command.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return command
}
