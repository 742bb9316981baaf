package sdt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bgrewell/sdt-kit/pkg/container"
	"github.com/bgrewell/sdt-kit/pkg/entry"
	"github.com/bgrewell/sdt-kit/pkg/fsutil"
	"github.com/bgrewell/sdt-kit/pkg/info"
	"github.com/bgrewell/sdt-kit/pkg/logging"
	"github.com/bgrewell/sdt-kit/pkg/option"
	"github.com/bgrewell/sdt-kit/pkg/rebuild"
	"github.com/bgrewell/sdt-kit/pkg/table"
	"github.com/bgrewell/sdt-kit/pkg/textblock"
)

const (
	CSV_EXTENSION = ".csv"
	SDT_EXTENSION = ".sdt"
)

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNoLayout    = errors.New("container layout unavailable")
)

// Container is a decoded SDT file.
type Container struct {
	Path string
	Data []byte
	// Layout is nil when the fields around the signature are out of bounds; entries may still have been decoded.
	Layout   *container.Layout
	Entries  []entry.Entry
	Warnings []textblock.Warning
	// Stop is set when decoding ended early. See textblock.DecodeResult.
	Stop error
}

// Open reads and decodes the container at path.
func Open(path string, opts ...option.Option) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c, err := Parse(data, opts...)
	if err != nil {
		return nil, err
	}
	c.Path = path
	return c, nil
}

// Parse decodes a container held in memory. Only a missing signature or an unreadable size field is an error.
func Parse(data []byte, opts ...option.Option) (*Container, error) {
	o := option.New(opts...)
	log := logging.NewLogger(o.Logger)

	res, err := textblock.NewDecoder(opts...).DecodeContainer(data)
	if err != nil {
		return nil, err
	}
	c := &Container{
		Data:     data,
		Entries:  res.Entries,
		Warnings: res.Warnings,
		Stop:     res.Stop,
	}
	if c.Layout, err = container.ParseLayout(data); err != nil {
		log.Debug("Layout incomplete", "error", err.Error())
		c.Layout = nil
	}
	return c, nil
}

// Rows returns the entries in their tabular form.
func (c *Container) Rows() []table.Row {
	return table.FromEntries(c.Entries)
}

// Info returns the region map of the container.
func (c *Container) Info() (*info.ContainerLayout, error) {
	if c.Layout == nil {
		return nil, ErrNoLayout
	}
	return info.NewContainerLayout(c.Layout, c.Entries), nil
}

// WriteCSV writes the entries to w as CSV.
func (c *Container) WriteCSV(w io.Writer, withBOM bool) error {
	return table.Write(w, c.Rows(), withBOM)
}

// Extract decodes the container at inputPath and writes its entries to csvPath. A container whose entry run ends
// early still produces a file; the reason is kept in Container.Stop.
func Extract(inputPath string, csvPath string, opts ...option.Option) (*Container, error) {
	o := option.New(opts...)
	log := logging.NewLogger(o.Logger)

	log.Info("Processing file", "path", inputPath)
	c, err := Open(inputPath, opts...)
	if err != nil {
		return nil, err
	}
	err = fsutil.WriteAtomic(csvPath, fsutil.FileMode(csvPath, 0o644), func(w io.Writer) error {
		return c.WriteCSV(w, o.WriteBOM)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", csvPath, err)
	}
	log.Info("Saved entries", "count", len(c.Entries), "path", csvPath)
	return c, nil
}

// ImportResult describes a completed import.
type ImportResult struct {
	OutputPath string
	Rows       int
	Warnings   []textblock.Warning
	Rebuild    *rebuild.Result
}

// ValidateImportPaths checks that csvPath names an existing .csv file and templatePath an existing .sdt file.
func ValidateImportPaths(csvPath string, templatePath string) error {
	if !hasExtension(csvPath, CSV_EXTENSION) {
		return fmt.Errorf("%w: first argument must be a %s file: %s", ErrInvalidPath, CSV_EXTENSION, csvPath)
	}
	if !isFile(csvPath) {
		return fmt.Errorf("%w: CSV file not found: %s", ErrInvalidPath, csvPath)
	}
	if !hasExtension(templatePath, SDT_EXTENSION) {
		return fmt.Errorf("%w: second argument must be an %s file: %s", ErrInvalidPath, SDT_EXTENSION, templatePath)
	}
	if !isFile(templatePath) {
		return fmt.Errorf("%w: template SDT file not found: %s", ErrInvalidPath, templatePath)
	}
	return nil
}

// Import rebuilds templatePath with the rows of csvPath and writes the result to outputPath, or over templatePath
// when outputPath is empty. Nothing is written unless every step succeeds.
func Import(csvPath string, templatePath string, outputPath string, opts ...option.Option) (*ImportResult, error) {
	o := option.New(opts...)
	log := logging.NewLogger(o.Logger)

	if err := ValidateImportPaths(csvPath, templatePath); err != nil {
		return nil, err
	}
	if outputPath == "" {
		outputPath = templatePath
	}

	rows, err := readRows(csvPath)
	if err != nil {
		return nil, err
	}
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", templatePath, err)
	}

	layout, err := container.ParseLayout(template)
	if err != nil {
		return nil, err
	}
	log.Info("Signature found", "offset", fmt.Sprintf("0x%X", layout.SignatureOffset))
	log.Info("Original text block size", "size", fmt.Sprintf("0x%X", layout.TextBlockSize))

	enc, err := textblock.NewEncoder(opts...).Encode(rows, template, layout.TextBlockStart())
	if err != nil {
		return nil, err
	}
	built, err := rebuild.NewRebuilder(opts...).Rebuild(enc.Data, template)
	if err != nil {
		return nil, err
	}

	if err := fsutil.WriteFileAtomic(outputPath, built.Data, fsutil.FileMode(outputPath, 0o644)); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	log.Info("Rebuilt container", "path", outputPath, "entries", len(enc.Entries))

	return &ImportResult{
		OutputPath: outputPath,
		Rows:       len(rows),
		Warnings:   enc.Warnings,
		Rebuild:    built,
	}, nil
}

func readRows(path string) ([]table.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := table.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func hasExtension(path string, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
