// Package xlsxstream reads xlsx workbooks row by row without loading whole
// worksheets into memory.
package xlsxstream

import (
	"log/slog"
	"os"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/numfmt"
	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/parser"
)

// Options configures how a workbook is opened and rendered.
type Options struct {
	// SharedStringCacheLimit is the largest shared-string table loaded into
	// memory; larger tables are streamed. Zero or negative always streams.
	// If nil, defaults to parser.DefaultCacheLimit.
	SharedStringCacheLimit *int
	// TempDir is the root of the staging directory. Empty means os.TempDir().
	TempDir string
	// Symbols overrides the decimal, thousands and currency symbols. Empty
	// decimal and thousands fields keep the defaults.
	Symbols *numfmt.Symbols
	// DateAsTime yields time.Time for date-formatted cells instead of text.
	DateAsTime bool
	// DetectTables specifies whether Extract computes table candidates.
	// If nil, defaults to true.
	DetectTables *bool
	// IncludePrintAreas specifies whether Extract reports print areas.
	// If nil, defaults to true.
	IncludePrintAreas *bool
	// Logger receives debug records. If nil, logging is discarded.
	Logger *slog.Logger
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{}
}

// CacheLimit returns the effective shared-string cache limit.
func (o Options) CacheLimit() int {
	if o.SharedStringCacheLimit != nil {
		return *o.SharedStringCacheLimit
	}
	return parser.DefaultCacheLimit
}

// StagingRoot returns the directory under which parts are extracted.
func (o Options) StagingRoot() string {
	if o.TempDir != "" {
		return o.TempDir
	}
	return os.TempDir()
}

// NumberSymbols returns the effective rendering symbols.
func (o Options) NumberSymbols() numfmt.Symbols {
	sym := numfmt.DefaultSymbols()
	if o.Symbols != nil {
		sym.Currency = o.Symbols.Currency
		if o.Symbols.Decimal != "" {
			sym.Decimal = o.Symbols.Decimal
		}
		if o.Symbols.Thousands != "" {
			sym.Thousands = o.Symbols.Thousands
		}
	}
	return sym
}

// ShouldDetectTables returns whether Extract computes table candidates.
func (o Options) ShouldDetectTables() bool {
	if o.DetectTables != nil {
		return *o.DetectTables
	}
	return true
}

// ShouldIncludePrintAreas returns whether Extract reports print areas.
func (o Options) ShouldIncludePrintAreas() bool {
	if o.IncludePrintAreas != nil {
		return *o.IncludePrintAreas
	}
	return true
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}
