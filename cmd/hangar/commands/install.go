package commands

import "github.com/spf13/cobra"

func (c *CLI) newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <fork> <build>",
		Short: "Download and unpack a version advertised by a server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := versionArgs(args)
			if err != nil {
				return err
			}
			return c.app.Install(cmd.Context(), options(cmd), key)
		},
	}
}

func (c *CLI) newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall <fork> <build>",
		Aliases: []string{"rm"},
		Short:   "Remove an installed version from disk",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := versionArgs(args)
			if err != nil {
				return err
			}
			return c.app.Uninstall(cmd.Context(), options(cmd), key)
		},
	}
}
