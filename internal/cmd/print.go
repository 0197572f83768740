package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/todoscan/internal/config"
	"github.com/harrison/todoscan/internal/display"
)

// NewPrintCommand creates the print command
func NewPrintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the configured todo file",
		Args:  cobra.NoArgs,
		RunE:  runPrint,
	}
}

func runPrint(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config-file")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Filename == "" {
		return fmt.Errorf("no todo file configured in %s: entries are written to the console", configPath)
	}

	content, err := os.ReadFile(cfg.Filename)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("todo file %s does not exist yet, run todoscan first", cfg.Filename)
	}
	if err != nil {
		return fmt.Errorf("read todo file: %w", err)
	}

	display.DisplayResult(cmd.OutOrStdout(), cfg.Filename, content)
	return nil
}
