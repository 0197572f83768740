package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/todoscan/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for todoscan.
// Running it without a subcommand scans a directory.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todoscan",
		Short: "Collect TODO and FIXME annotations into a todo.txt file",
		Long: `todoscan walks a directory tree, finds annotated comments such as
"TODO: cleanup" or "FIXME: handle null" and writes them to a todo.txt
compatible file, one task per line.

Keywords, priorities, tags and include/exclude rules are read from a YAML
configuration file. A default one is created on first run.

Examples:
  todoscan                         # Scan the current directory
  todoscan -d src -o src.todo.txt  # Scan src into a different file
  todoscan -R -v                   # Top level only, with debug output
  todoscan init --force            # Reset the configuration
  todoscan history --limit 5       # Show recent runs`,
		Args:    cobra.NoArgs,
		Version: Version,
		// main prints the error; usage would only repeat the help text
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:         runScan,
	}

	cmd.PersistentFlags().StringP("config-file", "c", config.DefaultConfigFile, "Path to the configuration file")

	cmd.Flags().StringP("directory", "d", ".", "Directory to scan")
	cmd.Flags().BoolP("no-recursion", "R", false, "Do not scan subdirectories")
	cmd.Flags().BoolP("verbose", "v", false, "Show debug output")
	cmd.Flags().StringP("output", "o", "", "Todo file to write (overrides the configured filename)")

	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewPrintCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
