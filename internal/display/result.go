package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/harrison/todoscan/internal/history"
)

// DisplayResult echoes the contents of the todo file at path.
func DisplayResult(w io.Writer, path string, content []byte) {
	header := fmt.Sprintf("=== %s ===", path)
	if colorEnabled(w) {
		c := color.New(color.FgCyan, color.Bold)
		c.EnableColor()
		header = c.Sprint(header)
	}
	fmt.Fprintln(w, header)

	if len(content) == 0 {
		fmt.Fprintln(w, "(no entries)")
		return
	}
	fmt.Fprint(w, string(content))
	if !strings.HasSuffix(string(content), "\n") {
		fmt.Fprintln(w)
	}
}

// DisplayRuns lists runs as a table. Start times are shown relative to now.
func DisplayRuns(w io.Writer, runs []*history.Run, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}

	colorize := colorEnabled(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tFILES\tWRITTEN\tSKIPPED\tROOT")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(run.ID),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			statusText(run.Status, colorize),
			humanize.Comma(int64(run.FilesScanned)),
			humanize.Comma(int64(run.EntriesWritten)),
			humanize.Comma(int64(run.DuplicateSkipped+run.EmptySkipped)),
			run.Root,
		)
	}
	tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusText(status string, colorize bool) string {
	if !colorize {
		return status
	}
	var c *color.Color
	switch status {
	case history.StatusCompleted:
		c = color.New(color.FgGreen)
	case history.StatusFailed:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.FgYellow)
	}
	c.EnableColor()
	return c.Sprint(status)
}
