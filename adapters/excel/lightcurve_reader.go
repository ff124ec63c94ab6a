package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"transitvet/domain/lightcurve"
	apperrors "transitvet/internal/errors"
	"transitvet/internal/logging"
	"transitvet/ports"
)

var lcLogger = logging.Default.WithComponent("lightcurve-reader")

// Column header aliases, matched case-insensitively. Kepler and TESS exports
// disagree on naming, so each column accepts the common variants.
var (
	timeAliases = []string{"time", "t", "bjd"}
	fluxAliases = []string{"flux", "f", "sap_flux", "pdcsap_flux"}
	uncAliases  = []string{"unc", "err", "sigma", "flux_err"}
)

// LightcurveReaderImpl loads observation series from .xlsx and .csv files
type LightcurveReaderImpl struct{}

// NewLightcurveReader creates a reader that handles both Excel and CSV files
func NewLightcurveReader() *LightcurveReaderImpl {
	return &LightcurveReaderImpl{}
}

var _ ports.LightcurveReader = (*LightcurveReaderImpl)(nil)

// ReadSeries loads a lightcurve from the given path. Unparsable cells become
// NaN so the cadence grid stays intact; downstream finite filtering drops them.
func (r *LightcurveReaderImpl) ReadSeries(ctx context.Context, path string) (*lightcurve.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NotFound(fmt.Sprintf("lightcurve file %s", path))
	}

	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".xlsx":
		rows, err = readSheetRows(path)
	default:
		return nil, apperrors.DataFormat(fmt.Sprintf("unsupported lightcurve file type %q", ext))
	}
	if err != nil {
		return nil, err
	}

	return rowsToSeries(path, rows)
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDataFormat, err)
	}
	return rows, nil
}

func readSheetRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDataFormat, err)
	}
	return rows, nil
}

// rowsToSeries resolves the header columns and parses every data row
func rowsToSeries(path string, rows [][]string) (*lightcurve.Series, error) {
	if len(rows) < 2 {
		return nil, apperrors.DataFormat("lightcurve file needs a header row and at least one data row")
	}

	timeCol := findColumn(rows[0], timeAliases)
	fluxCol := findColumn(rows[0], fluxAliases)
	uncCol := findColumn(rows[0], uncAliases)
	if timeCol < 0 {
		return nil, apperrors.DataFormat(fmt.Sprintf("no time column found in header %v", rows[0]))
	}
	if fluxCol < 0 {
		return nil, apperrors.DataFormat(fmt.Sprintf("no flux column found in header %v", rows[0]))
	}

	var times, flux, unc []float64
	badCells := 0
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		times = append(times, parseCell(row, timeCol, &badCells))
		flux = append(flux, parseCell(row, fluxCol, &badCells))
		if uncCol >= 0 {
			unc = append(unc, parseCell(row, uncCol, &badCells))
		}
	}

	series, err := lightcurve.NewSeries(times, flux, unc)
	if err != nil {
		return nil, err
	}

	lcLogger.Info("loaded %d cadences from %s (%d unparsable cells)", series.Len(), path, badCells)
	return series, nil
}

func findColumn(header []string, aliases []string) int {
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		for _, alias := range aliases {
			if name == alias {
				return i
			}
		}
	}
	return -1
}

// parseCell reads one cell as float64, returning NaN for missing or
// unparsable values. Short rows count as missing cells, not errors: xlsx
// readers drop trailing empty cells.
func parseCell(row []string, col int, badCells *int) float64 {
	if col >= len(row) {
		return math.NaN()
	}
	cell := strings.TrimSpace(row[col])
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		*badCells++
		return math.NaN()
	}
	return v
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
