package commands

import "github.com/spf13/cobra"

func (c *CLI) newLaunchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch <fork> <build>",
		Short: "Start a version, installing it first when needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := versionArgs(args)
			if err != nil {
				return err
			}
			address, _ := cmd.Flags().GetString("connect")
			return c.app.Launch(cmd.Context(), options(cmd), key, address)
		},
	}
	cmd.Flags().String("connect", "", "Server address (host:port) to join on startup")
	return cmd
}
