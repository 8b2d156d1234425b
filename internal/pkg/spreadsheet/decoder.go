package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNoWorksheet       = errors.New("no worksheet found")
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

// maxLegacyRows caps how many rows are read from a .xls sheet.
const maxLegacyRows = 100000

// Row maps a header name to the raw cell text of one data row.
type Row map[string]string

// Sheet is the first worksheet of a workbook, header row split from data rows.
// Blank rows are dropped.
type Sheet struct {
	Headers []string
	Rows    []Row
	// Date1904 reports the workbook's date system for serial date cells.
	Date1904 bool
}

// DecodeFile reads the first worksheet of the workbook stored at path.
func DecodeFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	return Decode(f, filepath.Base(path))
}

// Decode reads the first worksheet of a workbook; filename selects the format.
func Decode(r io.Reader, filename string) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return decodeLegacy(data)
	case ".xlsx", ".xlsm":
		return decodeOpenXML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

func decodeOpenXML(data []byte) (*Sheet, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}

	// Raw values keep times as day fractions and dates as serials instead of
	// whatever display format the author picked.
	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheetName, err)
	}

	sheet := buildSheet(rows)
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		sheet.Date1904 = *props.Date1904
	}
	return sheet, nil
}

func decodeLegacy(data []byte) (*Sheet, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}

	ws := workbook.GetSheet(0)
	if ws == nil {
		return nil, ErrNoWorksheet
	}

	resetCellFormats(workbook)

	var rows [][]string
	for i := 0; i <= int(ws.MaxRow) && i < maxLegacyRows; i++ {
		row := legacyRow(ws, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return buildSheet(rows), nil
}

// resetCellFormats points every cell style at the General format. The reader
// prints cells in built-in date formats as "2006.01", dropping the day, while
// General yields the raw serial. The workbook's 1904 flag is not exposed, so
// legacy serials are read in the 1900 system.
func resetCellFormats(workbook *xls.WorkBook) {
	for _, xf := range workbook.Xfs {
		switch style := xf.(type) {
		case *xls.Xf8:
			style.Format = 0
		case *xls.Xf5:
			style.Format = 0
		}
	}
}

// legacyRow returns nil for rows the sheet has no records for; the reader
// panics on those.
func legacyRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

// buildSheet turns a cell grid into header-keyed rows. Duplicate headers get a
// numeric suffix ("Date", "Date_1") and columns without a header are ignored.
func buildSheet(grid [][]string) *Sheet {
	sheet := &Sheet{}

	headerIdx := -1
	for i, cells := range grid {
		if !isBlank(cells) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return sheet
	}

	seen := make(map[string]int)
	columns := make([]string, len(grid[headerIdx]))
	for i, cell := range grid[headerIdx] {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 0
		}
		columns[i] = name
		sheet.Headers = append(sheet.Headers, name)
	}

	for _, cells := range grid[headerIdx+1:] {
		if isBlank(cells) {
			continue
		}
		row := make(Row, len(sheet.Headers))
		for i, name := range columns {
			if name == "" {
				continue
			}
			if i < len(cells) {
				row[name] = cells[i]
			} else {
				row[name] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// SerialToDate converts a spreadsheet date serial into its calendar day at
// midnight UTC. The fractional time-of-day part is discarded.
func SerialToDate(serial float64, date1904 bool) (time.Time, error) {
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
