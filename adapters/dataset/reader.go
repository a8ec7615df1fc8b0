package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	domain "salesdash/domain/dataset"
	"salesdash/internal"
	"salesdash/ports"
)

// Reader loads sales datasets from CSV or Excel workbooks
type Reader struct {
	logger *internal.Logger
}

// NewReader creates a reader that handles both .csv and .xlsx files
func NewReader(logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Reader{logger: logger}
}

// Read loads the file at path; the first row is the header
func (r *Reader) Read(path string) (*domain.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fileType := strings.TrimPrefix(ext, ".")
	r.logger.Debug("[DataReader] Starting to read %s file: %s", fileType, path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s file not found: %s: %w", strings.ToUpper(fileType), path, err)
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(path)
	default:
		return nil, fmt.Errorf("unsupported dataset type: %s", ext)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(fileType))
	}

	table, err := domain.NewTable(path, rows[0], rows[1:])
	if err != nil {
		return nil, err
	}
	r.logger.Info("[DataReader] %s loaded in %.2fms (%d columns, %d rows)",
		filepath.Base(path), float64(time.Since(start).Nanoseconds())/1e6, len(table.Headers()), table.Len())
	return table, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// readExcel reads the first sheet of the workbook
func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

var _ ports.DatasetReader = (*Reader)(nil)
