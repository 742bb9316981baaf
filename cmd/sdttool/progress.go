package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bgrewell/sdt-kit/pkg/option"
	"github.com/mattn/go-isatty"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

// truncateString truncates the input string to the specified max length.
// If truncation occurs, it prepends "..." to indicate the string has been shortened.
func truncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	if maxLength <= 3 {
		return input[len(input)-maxLength:]
	}
	return "..." + input[len(input)-(maxLength-3):]
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressMessage formats a spinner line for the given stage, fitted to width columns.
func progressMessage(path string, stage string, processed int64, total int64, width int) string {
	percent := 100.0
	if total > 0 {
		percent = float64(processed) / float64(total) * 100
	}
	fixedPart := fmt.Sprintf(" [%s] ", stage)
	suffixPart := fmt.Sprintf(" - %.2f%%", percent)

	availableSpace := width - len(fixedPart) - len(suffixPart) - 6
	if availableSpace < 10 {
		availableSpace = 10
	}
	return fmt.Sprintf("%s%s%s", fixedPart, truncateString(path, availableSpace), suffixPart)
}

// CreateProgressCallback returns a ProgressCallback that updates the spinner's message.
func CreateProgressCallback(spinner *yacspin.Spinner, path string) option.ProgressCallback {
	return func(stage string, processed int64, total int64) {
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 80
		}
		spinner.Message(progressMessage(path, stage, processed, total, width))
	}
}

// InitializeSpinner sets up and starts the yacspin spinner.
func InitializeSpinner() (*yacspin.Spinner, error) {
	settings := yacspin.Config{
		Frequency:         100 * time.Millisecond,
		ShowCursor:        false,
		SpinnerAtEnd:      false,
		CharSet:           yacspin.CharSets[14],
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopFailCharacter: "✗",
		StopCharacter:     "✓",
	}

	spinner, err := yacspin.New(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner: %w", err)
	}
	if err := spinner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start spinner: %w", err)
	}
	return spinner, nil
}

// status reports the outcome of a command, through the spinner when one is running.
type status struct {
	spinner *yacspin.Spinner
}

func (s *status) callback(path string) option.ProgressCallback {
	if s.spinner == nil {
		return nil
	}
	return CreateProgressCallback(s.spinner, path)
}

func (s *status) done(msg string) {
	if s.spinner == nil {
		fmt.Println(msg)
		return
	}
	s.spinner.StopMessage(" " + msg)
	_ = s.spinner.Stop()
}

func (s *status) fail(err error) {
	if s.spinner == nil {
		return
	}
	s.spinner.StopFailMessage(fmt.Sprintf(" %v", err))
	_ = s.spinner.StopFail()
}
