package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning to out, in yellow when out is a terminal.
func (w Warning) Display(out io.Writer) {
	fmt.Fprint(out, w.Render(colorEnabled(out)))
}

// Render formats the warning. Multi-line messages keep their indentation.
func (w Warning) Render(colorize bool) string {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		for _, line := range strings.Split(w.Message, "\n") {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}
		for i, file := range w.Files {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	if !colorize {
		return b.String()
	}
	c := color.New(color.FgYellow)
	c.EnableColor()
	return c.Sprint(b.String())
}

// WarnRootUnreadable reports a scan directory that cannot be listed.
func WarnRootUnreadable(root string, err error) Warning {
	return Warning{
		Title:      "Scan directory cannot be read",
		Message:    err.Error(),
		Files:      []string{root},
		Suggestion: "Pass an existing, readable directory with --directory",
	}
}

// WarnInvalidConfig reports a configuration file that failed validation.
func WarnInvalidConfig(path string, err error) Warning {
	return Warning{
		Title:      "Invalid configuration",
		Message:    err.Error(),
		Files:      []string{path},
		Suggestion: "Fix the listed keys, or regenerate the file with 'todoscan init --force'",
	}
}

// WarnOutputLocked reports an output file held by another run.
func WarnOutputLocked(output, lockPath string) Warning {
	return Warning{
		Title:      "Todo file is in use",
		Message:    "Another todoscan run is writing " + output,
		Files:      []string{lockPath},
		Suggestion: "Wait for the other run to finish. Remove the lock file only if no run is active.",
	}
}

// colorEnabled reports whether w is a terminal that accepts colors.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
