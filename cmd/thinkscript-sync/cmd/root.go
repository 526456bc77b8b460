package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/thinkscript-sync/internal/config"
	"github.com/oshokin/thinkscript-sync/internal/service/synchronizer"
	"github.com/oshokin/thinkscript-sync/internal/version"
)

// newRootCommand builds the base command that synchronizes scripts into the cache,
// with the `version` and `init` subcommands attached.
func newRootCommand() *cobra.Command {
	options := new(synchronizer.Options)

	rootCmd := &cobra.Command{
		Use:   version.Name,
		Short: "Synchronize remote thinkScript sources into the thinkorswim cache",
		Long: "Download every script listed in the scripts settings file and rewrite the matching " +
			"entities of the thinkorswim cache file when their contents changed.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return synchronizer.Run(ctx, options)
		},
	}

	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to the options file")
	flags.StringVarP(&options.SettingsFile, "settings", "s", "", "path to the application settings file (default "+config.DefaultSettingsFilename+")")
	flags.StringVar(&options.ScriptsFile, "scripts", "", "path to the script settings file (default "+config.DefaultScriptsFilename+")")
	flags.StringVarP(&options.DownloadDir, "download-dir", "d", "", "folder for downloaded scripts (default "+config.DefaultDownloadDir+")")
	flags.StringVar(&options.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVarP(&options.DryRun, "dry-run", "n", false, "report changes without writing the cache file")

	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}

// Execute runs the thinkscript-sync CLI and exits with non-zero status on error.
func Execute() {
	os.Exit(exitCode(newRootCommand(), os.Args[1:]))
}

// exitCode runs the command with args and maps the outcome to a process exit status.
func exitCode(rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return 1
	}

	return 0
}
