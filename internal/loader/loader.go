// Package loader reads the input time series from CSV.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mlaoire/pvdispatch/core/model"
)

// Column names expected in the input file.
const (
	timeColumn  = "updated_time"
	solarColumn = "production_power_w"
	loadColumn  = "consumption_power_w"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ReadFile loads the series from the CSV file at path.
func ReadFile(path string) (model.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Series{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a time-series CSV with one row per step, sorted by time.
// Missing or empty power values are treated as zero. The step duration is
// derived from the first two timestamps and falls back to the default when
// the horizon has a single row.
func Read(r io.Reader) (model.Series, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return model.Series{}, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{timeColumn, solarColumn, loadColumn} {
		if _, ok := idx[required]; !ok {
			return model.Series{}, fmt.Errorf("input: missing column %q", required)
		}
	}

	var s model.Series
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Series{}, fmt.Errorf("read row %d: %w", line, err)
		}
		line++

		ts, err := parseTime(rec[idx[timeColumn]])
		if err != nil {
			return model.Series{}, fmt.Errorf("row %d: %w", line, err)
		}
		if n := len(s.Times); n > 0 && !ts.After(s.Times[n-1]) {
			return model.Series{}, fmt.Errorf("row %d: timestamps not strictly increasing", line)
		}
		s.Times = append(s.Times, ts)
		s.Solar = append(s.Solar, parsePower(rec[idx[solarColumn]]))
		s.Load = append(s.Load, parsePower(rec[idx[loadColumn]]))
	}

	if len(s.Times) >= 2 {
		s.StepMinutes = s.Times[1].Sub(s.Times[0]).Minutes()
	} else {
		s.StepMinutes = model.DefaultStepMinutes
	}
	if err := s.Validate(); err != nil {
		return model.Series{}, err
	}
	return s, nil
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

func parsePower(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
