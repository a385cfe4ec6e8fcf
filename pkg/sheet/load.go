package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedFormat is returned for workbook paths Load cannot read
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// Load reads a workbook from an .xlsx file or a directory of .csv files.
// The workbook is named after the file or directory, without extension.
func Load(path string) (*Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat workbook: %w", err)
	}
	if info.IsDir() {
		return LoadCSVDir(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	case ".csv":
		return LoadCSVFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadAll loads several workbooks concurrently, keyed like paths
func LoadAll(ctx context.Context, paths map[string]string) (map[string]*Workbook, error) {
	var mu sync.Mutex
	books := make(map[string]*Workbook, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for name, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			wb, err := Load(path)
			if err != nil {
				return fmt.Errorf("workbook %s: %w", name, err)
			}
			wb.Name = name
			mu.Lock()
			books[name] = wb
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return books, nil
}

// LoadXLSX reads every worksheet of an Excel file. The first row of each
// worksheet is its header.
func LoadXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return readXLSX(workbookName(path), f)
}

// LoadXLSXReader reads an Excel workbook from r
func LoadXLSXReader(name string, r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	return readXLSX(name, f)
}

func readXLSX(name string, f *excelize.File) (*Workbook, error) {
	wb := NewWorkbook(name)
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
		}
		wb.Add(tableFromRecords(sheetName, rows))
	}
	return wb, nil
}

// LoadCSVDir reads every .csv file in dir as one worksheet named after
// the file
func LoadCSVDir(dir string) (*Workbook, error) {
	pattern := filepath.Join(dir, "*.csv")
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}
	sort.Strings(matches)

	wb := NewWorkbook(workbookName(dir))
	for _, path := range matches {
		t, err := readCSVFile(path)
		if err != nil {
			return nil, err
		}
		wb.Add(t)
	}
	return wb, nil
}

// LoadCSVFile reads a single .csv file as a one-sheet workbook
func LoadCSVFile(path string) (*Workbook, error) {
	t, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}
	return NewWorkbook(t.Name, t), nil
}

func readCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(workbookName(path), f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV reads one worksheet in CSV form
func ReadCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return tableFromRecords(name, records), nil
}

func tableFromRecords(name string, records [][]string) *Table {
	if len(records) == 0 {
		return NewTable(name, nil, nil)
	}
	return NewTable(name, records[0], records[1:])
}

func workbookName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
