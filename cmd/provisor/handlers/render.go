package handlers

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/provisor/internal/provisioning"
)

var (
	styleSucceeded = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleTimedOut  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	styleNeutral   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// colorEnabled controls styled output; overridden in tests.
var colorEnabled = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// renderStatus styles a status for terminal output.
func renderStatus(status provisioning.Status) string {
	if !colorEnabled() {
		return string(status)
	}
	switch status {
	case provisioning.StatusSucceeded:
		return styleSucceeded.Render(string(status))
	case provisioning.StatusFailed:
		return styleFailed.Render(string(status))
	case provisioning.StatusTimedOut:
		return styleTimedOut.Render(string(status))
	default:
		return styleNeutral.Render(string(status))
	}
}

// renderResult writes the result in the requested format.
func renderResult(w io.Writer, result *provisioning.Result, format string) error {
	switch format {
	case "json":
		out, err := result.JSON()
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "", "text":
		return renderText(w, result)
	default:
		return fmt.Errorf("unknown output format %q (expected text or json)", format)
	}
}

func renderText(w io.Writer, result *provisioning.Result) error {
	fmt.Fprintf(w, "%s %s: %s\n", result.Kind, result.Operation, renderStatus(result.Status))
	if result.ID != "" {
		fmt.Fprintf(w, "  id:         %s\n", result.ID)
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "  run id:     %s\n", result.RunID)
	}
	if result.LastState != "" {
		fmt.Fprintf(w, "  last state: %s\n", result.LastState)
	}
	fmt.Fprintf(w, "  attempts:   %d\n", result.Attempts())
	fmt.Fprintf(w, "  elapsed:    %v\n", result.Elapsed.Round(time.Millisecond))
	if result.Error != "" {
		fmt.Fprintf(w, "  error:      %s\n", result.Error)
	}
	if result.Cleanup != "" {
		fmt.Fprintf(w, "  cleanup:    %s\n", result.Cleanup)
	}
	return nil
}
