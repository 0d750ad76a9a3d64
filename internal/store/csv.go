package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/idtlab/autoignition/internal/series"
)

// sensPrefix marks a CSV column as a sensitivity trace: "sens:a1".
const sensPrefix = "sens:"

// LoadSeriesCSV reads an externally produced time series. The first column
// must be "time"; remaining columns are channels, except columns named
// "sens:<param>" which become sensitivity traces.
func LoadSeriesCSV(path string) (*series.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 3 {
		return nil, fmt.Errorf("store: %s: need a header and at least 2 rows", path)
	}

	header := records[0]
	if len(header) < 2 || header[0] != "time" {
		return nil, fmt.Errorf("store: %s: first column must be \"time\"", path)
	}

	n := len(records) - 1
	times := make([]float64, n)
	cols := make([][]float64, len(header)-1)
	for i := range cols {
		cols[i] = make([]float64, n)
	}

	for r, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("store: %s: row %d has %d fields, want %d", path, r+2, len(rec), len(header))
		}
		if times[r], err = strconv.ParseFloat(rec[0], 64); err != nil {
			return nil, fmt.Errorf("store: %s row %d: %w", path, r+2, err)
		}
		for c := 1; c < len(rec); c++ {
			if cols[c-1][r], err = strconv.ParseFloat(rec[c], 64); err != nil {
				return nil, fmt.Errorf("store: %s row %d: %w", path, r+2, err)
			}
		}
	}

	channels := make(map[string][]float64)
	var sens map[string][]float64
	for c, name := range header[1:] {
		if param, found := strings.CutPrefix(name, sensPrefix); found {
			if sens == nil {
				sens = make(map[string][]float64)
			}
			sens[param] = cols[c]
			continue
		}
		channels[name] = cols[c]
	}

	return series.New(times, channels, sens)
}
