package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDisplayWarning_TitleOnly(t *testing.T) {
	var buf bytes.Buffer
	w := Warning{
		Title: "Configuration Missing",
	}

	w.Display(&buf)

	output := buf.String()

	if output != "Warning: Configuration Missing\n" {
		t.Errorf("unexpected output %q", output)
	}

	// Buffers are not terminals
	if strings.Contains(output, "\x1b[") {
		t.Error("Expected no ANSI codes for non-terminal writer")
	}
}

func TestRenderWarning_AllFields(t *testing.T) {
	w := Warning{
		Title:      "Scan directory cannot be read",
		Message:    "first line\nsecond line",
		Files:      []string{"a", "b"},
		Suggestion: "Try again",
	}

	want := "Warning: Scan directory cannot be read\n" +
		"    first line\n" +
		"    second line\n" +
		"    Affected files:\n" +
		"      1. a\n" +
		"      2. b\n" +
		"    Suggestion:\n" +
		"    Try again\n"

	if got := w.Render(false); got != want {
		t.Errorf("Render(false) =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderWarning_SingleFile(t *testing.T) {
	out := Warning{Title: "T", Files: []string{"todo.cfg.yml"}}.Render(false)
	if !strings.Contains(out, "Affected file:\n") {
		t.Errorf("expected singular label, got %q", out)
	}
}

func TestRenderWarning_Colorized(t *testing.T) {
	out := Warning{Title: "T"}.Render(true)

	if !strings.Contains(out, "\x1b[33m") {
		t.Error("Expected yellow ANSI color code in output")
	}
	if !strings.Contains(out, "\x1b[0m") {
		t.Error("Expected ANSI reset code in output")
	}
	if !strings.Contains(out, "Warning: T") {
		t.Error("Expected title in output")
	}
}

func TestWarningFactories(t *testing.T) {
	tests := []struct {
		name       string
		warning    Warning
		wantTitle  string
		wantFile   string
		wantSubstr string
	}{
		{
			name:       "root unreadable",
			warning:    WarnRootUnreadable("/missing", errors.New("no such file or directory")),
			wantTitle:  "Scan directory cannot be read",
			wantFile:   "/missing",
			wantSubstr: "--directory",
		},
		{
			name:       "invalid config",
			warning:    WarnInvalidConfig("todo.cfg.yml", errors.New("bad pattern")),
			wantTitle:  "Invalid configuration",
			wantFile:   "todo.cfg.yml",
			wantSubstr: "todoscan init --force",
		},
		{
			name:       "output locked",
			warning:    WarnOutputLocked("todo.txt", "todo.txt.lock"),
			wantTitle:  "Todo file is in use",
			wantFile:   "todo.txt.lock",
			wantSubstr: "todo.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.warning.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", tt.warning.Title, tt.wantTitle)
			}
			if len(tt.warning.Files) != 1 || tt.warning.Files[0] != tt.wantFile {
				t.Errorf("Files = %v, want [%s]", tt.warning.Files, tt.wantFile)
			}
			if !strings.Contains(tt.warning.Render(false), tt.wantSubstr) {
				t.Errorf("expected %q in rendered warning", tt.wantSubstr)
			}
		})
	}
}
