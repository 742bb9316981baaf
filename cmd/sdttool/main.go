package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bgrewell/sdt-kit"
	"github.com/bgrewell/sdt-kit/pkg/lang"
	"github.com/bgrewell/sdt-kit/pkg/logging"
	"github.com/bgrewell/sdt-kit/pkg/option"
	"github.com/bgrewell/sdt-kit/pkg/plausibility"
	"github.com/bgrewell/usage"
	"golang.org/x/term"
)

var (
	version = "dev"
)

const (
	CMD_EXTRACT = "extract"
	CMD_IMPORT  = "import"
	CMD_INFO    = "info"
	CMD_LIST    = "list"
)

type settings struct {
	command string
	input   string
	target  string
	output  string
	json    bool
	hex     bool
	opts    []option.Option
	color   bool
	spinner bool
}

func main() {
	u := usage.NewUsage(
		usage.WithApplicationName("sdttool"),
		usage.WithApplicationVersion(version),
		usage.WithApplicationDescription("sdttool extracts the captions of an SDT container to CSV and imports edited captions back into the container."),
	)
	help := u.AddBooleanOption("h", "help", false, "Display this help message", "", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Enable verbose (debug) logging", "", nil)
	trace := u.AddBooleanOption("vv", "trace", false, "Enable trace logging", "", nil)
	bom := u.AddBooleanOption("b", "bom", false, "Start exported CSV files with a UTF-8 byte order mark", "", nil)
	strict := u.AddBooleanOption("s", "strict", false, "Only accept entries whose language id is in the language table", "", nil)
	jsonOut := u.AddBooleanOption("j", "json", false, "Print the info layout as JSON", "", nil)
	decimal := u.AddBooleanOption("d", "decimal", false, "Print info offsets in decimal", "", nil)
	langs := u.AddStringOption("l", "langs", "", "TOML file with additional language labels", "", nil)
	output := u.AddStringOption("o", "output", "", "Write the imported container here instead of over the template", "", nil)
	command := u.AddArgument(1, "command", "One of extract, import, info or list", "")
	input := u.AddArgument(2, "input", "extract/info/list: the .sdt file. import: the edited .csv file", "")
	target := u.AddArgument(3, "target", "extract: the .csv file to write. import: the .sdt template, rewritten in place", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if command == nil || *command == "" || input == nil || *input == "" {
		u.PrintError(fmt.Errorf("a <command> and an <input> file must be provided"))
		os.Exit(1)
	}

	level := logging.LEVEL_INFO
	if *verbose {
		level = logging.LEVEL_DEBUG
	}
	if *trace {
		level = logging.LEVEL_TRACE
	}
	useColor := isTerminal(os.Stderr)
	logger := logging.NewSimpleLogger(os.Stderr, level, useColor)
	log := logging.NewLogger(logger)

	table := lang.Default()
	if *langs != "" {
		var err error
		if table, err = lang.LoadTable(table, *langs); err != nil {
			log.Error(err, "Failed to load language table", "path", *langs)
			os.Exit(1)
		}
	}

	opts := []option.Option{
		option.WithLogger(logger),
		option.WithLanguageTable(table),
		option.WithBOM(*bom),
	}
	if *strict {
		opts = append(opts, option.WithPlausibility(plausibility.Strict(table)))
	}

	s := settings{
		command: strings.ToLower(*command),
		input:   *input,
		output:  *output,
		json:    *jsonOut,
		hex:     !*decimal,
		opts:    opts,
		color:   isTerminal(os.Stdout),
		spinner: useSpinner(isTerminal(os.Stdout), isTerminal(os.Stderr)),
	}
	if target != nil {
		s.target = *target
	}

	if err := run(s); err != nil {
		log.Error(err, "Failed", "command", s.command)
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			u.PrintUsage()
		}
		os.Exit(1)
	}
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func run(s settings) error {
	switch s.command {
	case CMD_EXTRACT:
		if s.target == "" {
			return &usageError{msg: "extract needs <input.sdt> <output.csv>"}
		}
		return runExtract(s)
	case CMD_IMPORT:
		if s.target == "" {
			return &usageError{msg: "import needs <input.csv> <template.sdt>"}
		}
		return runImport(s)
	case CMD_INFO:
		return runInfo(s)
	case CMD_LIST:
		return runList(s)
	default:
		return &usageError{msg: fmt.Sprintf("unknown command %q", s.command)}
	}
}

// useSpinner reports whether a spinner can run on stdout. Every log level, info included, is written to stderr,
// so the spinner is only used when stderr does not share the terminal.
func useSpinner(stdoutTerminal bool, stderrTerminal bool) bool {
	return stdoutTerminal && !stderrTerminal
}

// newStatus starts a spinner when the settings allow one.
func newStatus(s settings) *status {
	if !s.spinner {
		return &status{}
	}
	spinner, err := InitializeSpinner()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize spinner: %v\n", err)
		fmt.Fprintf(os.Stderr, "Progress updates will be disabled.\n")
		return &status{}
	}
	return &status{spinner: spinner}
}

func runExtract(s settings) error {
	st := newStatus(s)
	opts := s.opts
	if cb := st.callback(s.input); cb != nil {
		opts = append(opts, option.WithProgress(cb))
	}
	c, err := sdt.Extract(s.input, s.target, opts...)
	if err != nil {
		st.fail(err)
		return err
	}
	msg := fmt.Sprintf("Parsed %d entries. Saved to '%s'.", len(c.Entries), s.target)
	if c.Stop != nil {
		msg += fmt.Sprintf(" Stopped early: %v", c.Stop)
	}
	st.done(msg)
	return nil
}

func runImport(s settings) error {
	st := newStatus(s)
	opts := s.opts
	if cb := st.callback(s.input); cb != nil {
		opts = append(opts, option.WithProgress(cb))
	}
	res, err := sdt.Import(s.input, s.target, s.output, opts...)
	if err != nil {
		st.fail(err)
		return err
	}
	st.done(fmt.Sprintf("Successfully rebuilt SDT. Output saved to '%s'.", res.OutputPath))
	return nil
}

func runInfo(s settings) error {
	c, err := sdt.Open(s.input, s.opts...)
	if err != nil {
		return err
	}
	layout, err := c.Info()
	if err != nil {
		return err
	}
	if s.json {
		fmt.Println(layout.PrettyJSON())
		return nil
	}
	layout.Print(os.Stdout, s.color, s.hex)
	return nil
}

func runList(s settings) error {
	c, err := sdt.Open(s.input, s.opts...)
	if err != nil {
		return err
	}
	maxText := 0
	if s.color {
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			// Leave room for the numeric columns and borders.
			maxText = max(width-60, 20)
		}
	}
	fmt.Println(renderEntries(c.Entries, maxText))
	return nil
}
