package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Config describes where sign rows come from. Columns are fixed:
// category, title, description, image URL.
type Config struct {
	FilePath  string
	SheetName string
	StartRow  int // 1-based; rows before it are headers
}

// DefaultConfig reads Sheet1 and skips one header row.
func DefaultConfig(path string) Config {
	return Config{FilePath: path, SheetName: "Sheet1", StartRow: 2}
}

// Row is one sign read from a spreadsheet.
type Row struct {
	Line        int
	Category    string
	Title       string
	Description string
	ImageURL    string
}

// CategoryKey derives the stable category key from its display name.
func (r Row) CategoryKey() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(r.Category)), " ", "_")
}

// Writer stores imported signs. It reports whether the sign was new.
type Writer interface {
	WriteSign(ctx context.Context, row Row) (created bool, err error)
}

// Result summarizes an import run.
type Result struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Import reads every row of the configured file and hands it to w. Bad rows
// are skipped and reported in Result.Errors; only I/O failures abort.
func Import(ctx context.Context, cfg Config, w Writer) (*Result, error) {
	rows, err := Read(cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{Errors: make([]string, 0)}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.TotalProcessed++
		if row.Title == "" || row.Category == "" {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: category and title are required", row.Line))
			continue
		}
		created, err := w.WriteSign(ctx, row)
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", row.Line, err))
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

// Read parses an .xlsx or .csv file into rows, picking the format by extension.
func Read(cfg Config) ([]Row, error) {
	if cfg.StartRow <= 0 {
		cfg.StartRow = 1
	}
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		return readCSV(cfg)
	}
	return readExcel(cfg)
}

func readExcel(cfg Config) ([]Row, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return toRows(records, cfg.StartRow), nil
}

func readCSV(cfg Config) ([]Row, error) {
	file, err := os.Open(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, rec)
	}
	return toRows(records, cfg.StartRow), nil
}

func toRows(records [][]string, startRow int) []Row {
	var rows []Row
	for i, rec := range records {
		if i < startRow-1 || blank(rec) {
			continue
		}
		rows = append(rows, Row{
			Line:        i + 1,
			Category:    cell(rec, 0),
			Title:       cell(rec, 1),
			Description: cell(rec, 2),
			ImageURL:    cell(rec, 3),
		})
	}
	return rows
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
