// Package main provides the CLI entry point for xlsxstream-go.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream"
	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/models"
	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/numfmt"
	"github.com/ukaji3/xlsxstream-go/pkg/xlsxstream/output"
)

const sheetSeparator = "--------"

type cliOptions struct {
	format        string
	outputPath    string
	pretty        bool
	sheet         int
	sheetName     string
	encoding      string
	cacheLimit    int
	decimalSep    string
	thousandsSep  string
	currency      string
	dateAsTime    bool
	noTables      bool
	sheetsDir     string
	printAreasDir string
	verbose       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &cliOptions{}
	rootCmd := &cobra.Command{
		Use:   "xlsxstream [input.xlsx]",
		Short: "Stream rows out of Excel workbooks",
		Long: `xlsxstream-go reads xlsx workbooks row by row, renders cell values with
their number formats and writes CSV or JSON.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], o)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&o.format, "format", "f", "csv", "Output format: csv, json")
	flags.StringVarP(&o.outputPath, "output", "o", "", "Output file path (default: stdout)")
	flags.BoolVar(&o.pretty, "pretty", false, "Pretty-print JSON output")
	flags.IntVarP(&o.sheet, "sheet", "s", 1, "1-based sheet number to export as CSV, 0 for all sheets")
	flags.StringVarP(&o.sheetName, "sheet-name", "n", "", "Name of the sheet to export as CSV")
	flags.StringVar(&o.encoding, "encoding", "utf-8", "Character encoding of CSV output")
	flags.IntVar(&o.cacheLimit, "cache-limit", 50000, "Largest shared-string table held in memory, 0 to always stream")
	flags.StringVar(&o.decimalSep, "decimal-sep", ".", "Decimal separator for formatted numbers")
	flags.StringVar(&o.thousandsSep, "thousands-sep", ",", "Thousands separator for formatted numbers")
	flags.StringVar(&o.currency, "currency", "", "Currency symbol for currency formats without a code")
	flags.BoolVar(&o.dateAsTime, "date-as-time", false, "Render date cells as timestamps")
	flags.BoolVar(&o.noTables, "no-tables", false, "Skip table candidate detection in JSON output")
	flags.StringVar(&o.sheetsDir, "sheets-dir", "", "Directory for per-sheet JSON files")
	flags.StringVar(&o.printAreasDir, "print-areas-dir", "", "Directory for per-print-area JSON files")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Log debug records to stderr")

	return rootCmd
}

func (o *cliOptions) libraryOptions(log *slog.Logger) xlsxstream.Options {
	limit := o.cacheLimit
	detect := !o.noTables
	return xlsxstream.Options{
		SharedStringCacheLimit: &limit,
		Symbols: &numfmt.Symbols{
			Decimal:   o.decimalSep,
			Thousands: o.thousandsSep,
			Currency:  o.currency,
		},
		DateAsTime:   o.dateAsTime,
		DetectTables: &detect,
		Logger:       log,
	}
}

func run(cmd *cobra.Command, inputPath string, o *cliOptions) error {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	opts := o.libraryOptions(log)

	var out io.Writer = cmd.OutOrStdout()
	if o.outputPath != "" {
		f, err := os.Create(o.outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch o.format {
	case "csv":
		return writeCSV(out, inputPath, o, opts)
	case "json":
		return writeJSON(out, inputPath, o, opts)
	}
	return fmt.Errorf("invalid format: %s (must be csv or json)", o.format)
}

func writeCSV(out io.Writer, inputPath string, o *cliOptions, opts xlsxstream.Options) error {
	wb, err := xlsxstream.Open(inputPath, opts)
	if err != nil {
		return err
	}
	defer wb.Close()

	sheets, err := selectSheets(wb, o)
	if err != nil {
		return err
	}

	cw, err := output.NewCSVWriter(out, o.encoding)
	if err != nil {
		return err
	}
	for i, sheet := range sheets {
		if len(sheets) > 1 {
			if i > 0 {
				if err := cw.WriteLine(sheetSeparator); err != nil {
					return err
				}
			}
			if err := cw.WriteLine(sheet.Name()); err != nil {
				return err
			}
		}
		for sheet.Next() {
			if err := cw.WriteRow(sheet.Row()); err != nil {
				return err
			}
		}
		if err := sheet.Err(); err != nil {
			return fmt.Errorf("sheet %q: %w", sheet.Name(), err)
		}
	}
	return cw.Close()
}

func selectSheets(wb *xlsxstream.Workbook, o *cliOptions) ([]*xlsxstream.Sheet, error) {
	if o.sheetName != "" {
		s, err := wb.SheetByName(o.sheetName)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, o.sheetName)
		}
		return []*xlsxstream.Sheet{s}, nil
	}
	if o.sheet == 0 {
		return wb.Sheets(), nil
	}
	s, err := wb.Sheet(o.sheet - 1)
	if err != nil {
		return nil, err
	}
	return []*xlsxstream.Sheet{s}, nil
}

func writeJSON(out io.Writer, inputPath string, o *cliOptions, opts xlsxstream.Options) error {
	wb, err := xlsxstream.Extract(inputPath, opts)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if o.sheetsDir != "" {
		if err := writeSheetFiles(wb, o.sheetsDir, o.pretty); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}
	if o.printAreasDir != "" {
		if err := writePrintAreaFiles(wb, o.printAreasDir, o.pretty); err != nil {
			return fmt.Errorf("failed to write print area files: %w", err)
		}
	}
	if (o.sheetsDir != "" || o.printAreasDir != "") && o.outputPath == "" {
		return nil
	}

	jsonData, err := output.ToJSON(wb, o.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	_, err = fmt.Fprintln(out, string(jsonData))
	return err
}

func writeSheetFiles(wb *models.WorkbookData, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		jsonData, err := output.SheetToJSON(sheet, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, sheet.Name+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}

func writePrintAreaFiles(wb *models.WorkbookData, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, sheet := range wb.Sheets {
		for i, area := range sheet.PrintAreas {
			view := createPrintAreaView(wb.BookName, sheet, area)
			jsonData, err := output.PrintAreaViewToJSON(&view, pretty)
			if err != nil {
				return err
			}

			filename := filepath.Join(dir, fmt.Sprintf("%s_area%d.json", sheet.Name, i+1))
			if err := os.WriteFile(filename, jsonData, 0644); err != nil {
				return err
			}
		}
	}

	return nil
}

func createPrintAreaView(bookName string, sheet models.SheetData, area models.PrintArea) models.PrintAreaView {
	view := models.PrintAreaView{
		BookName:  bookName,
		SheetName: sheet.Name,
		Area:      area,
	}

	// Keep only the cells inside the area
	for _, row := range sheet.Rows {
		cells := make(map[string]interface{})
		for col, v := range row.C {
			if c, err := strconv.Atoi(col); err == nil && area.Contains(row.R, c) {
				cells[col] = v
			}
		}
		if len(cells) > 0 {
			view.Rows = append(view.Rows, models.CellRow{R: row.R, C: cells})
		}
	}

	return view
}
