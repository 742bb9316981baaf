package option

import (
	"github.com/bgrewell/sdt-kit/pkg/lang"
	"github.com/bgrewell/sdt-kit/pkg/plausibility"
	"github.com/go-logr/logr"
)

// ProgressCallback defines the signature for progress update functions.
// Parameters:
// - stage: The name of the step being run ("decode", "encode", "rebuild").
// - processed: The units processed so far (bytes for decode and rebuild, rows for encode).
// - total: The total number of units in the step.
type ProgressCallback func(stage string, processed int64, total int64)

// Options holds the settings shared by the decoder, encoder and rebuilder.
type Options struct {
	Logger           logr.Logger
	Languages        lang.Table
	Plausibility     plausibility.Filter
	ProgressCallback ProgressCallback
	WriteBOM         bool
}

// Option represents a function that modifies the Options
type Option func(*Options)

// New applies opts over the defaults. When no plausibility filter is given the tolerant filter is built from the
// final language table.
func New(opts ...Option) *Options {
	o := &Options{
		Logger:           logr.Discard(),
		Languages:        lang.Default(),
		ProgressCallback: func(string, int64, int64) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Plausibility == nil {
		o.Plausibility = plausibility.Tolerant(o.Languages)
	}
	if o.ProgressCallback == nil {
		o.ProgressCallback = func(string, int64, int64) {}
	}
	return o
}

// WithLogger sets the logger used for status and warning output.
func WithLogger(logger logr.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithLanguageTable replaces the default language table.
func WithLanguageTable(table lang.Table) Option {
	return func(o *Options) {
		o.Languages = table
	}
}

// WithPlausibility sets the filter used to detect the end of the entry run.
func WithPlausibility(filter plausibility.Filter) Option {
	return func(o *Options) {
		o.Plausibility = filter
	}
}

// WithProgress sets a progress callback function that will be called with progress updates.
func WithProgress(callback ProgressCallback) Option {
	return func(o *Options) {
		o.ProgressCallback = callback
	}
}

// WithBOM sets whether exported CSV files start with a UTF-8 byte order mark.
func WithBOM(enabled bool) Option {
	return func(o *Options) {
		o.WriteBOM = enabled
	}
}
