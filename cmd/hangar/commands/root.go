// Package commands implements the CLI commands for the hangar launcher.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/hangar/internal/app"
	"go.trai.ch/hangar/internal/build"
	"go.trai.ch/hangar/internal/core/domain"
)

// CLI represents the command line interface for hangar.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	RunUI(ctx context.Context, opts app.Options) error
	List(ctx context.Context, opts app.Options) error
	Refresh(ctx context.Context, opts app.Options) error
	Install(ctx context.Context, opts app.Options, key domain.VersionKey) error
	Uninstall(ctx context.Context, opts app.Options, key domain.VersionKey) error
	Launch(ctx context.Context, opts app.Options, key domain.VersionKey, address string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:           "hangar",
		Short:         "Download, manage and launch game versions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.RunUI(cmd.Context(), options(cmd))
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringP("output-mode", "o", "auto", "Output mode: auto, tui, or linear")
	rootCmd.PersistentFlags().Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newUICmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newRefreshCmd())
	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newUninstallCmd())
	rootCmd.AddCommand(c.newLaunchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// options reads the persistent flags shared by every command.
func options(cmd *cobra.Command) app.Options {
	configPath, _ := cmd.Flags().GetString("config")
	outputMode, _ := cmd.Flags().GetString("output-mode")
	ci, _ := cmd.Flags().GetBool("ci")

	// If --ci is set, override output-mode to "linear"
	if ci {
		outputMode = "linear"
	}
	return app.Options{ConfigPath: configPath, OutputMode: outputMode}
}

// versionArgs parses "<fork> <build>" into a version key.
func versionArgs(args []string) (domain.VersionKey, error) {
	v := domain.LocalVersion(args[0], args[1])
	if err := v.Validate(); err != nil {
		return domain.VersionKey{}, err
	}
	return v.Key(), nil
}
