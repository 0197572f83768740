package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/todoscan/internal/config"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Long: `Write the commented default configuration to the file given by
--config-file. An existing file is left alone unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing configuration file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config-file")
	force, _ := cmd.Flags().GetBool("force")

	if force {
		if err := config.WriteDefault(configPath); err != nil {
			return err
		}
	} else {
		created, err := config.Bootstrap(configPath)
		if err != nil {
			return err
		}
		if !created {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", configPath)
	return nil
}
