package main

import (
	"fmt"

	"github.com/marmos91/avrcpbrowse/pkg/config"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var (
		force bool
		path  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				written, err := config.InitConfig(force)
				if err != nil {
					return err
				}
				path = written
			} else if err := config.InitConfigToPath(path, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
	cmd.Flags().StringVar(&path, "path", "", "Write to this path instead of the default location")
	return cmd
}
