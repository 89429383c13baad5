// Package export writes a solved dispatch schedule to CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mlaoire/pvdispatch/core/model"
)

var csvHeader = []string{
	"time", "solar_production", "load_demand",
	"P_solar_household", "P_solar_battery", "P_solar_grid",
	"P_battery_household", "P_grid_battery", "P_grid_household",
	"SE", "SoC", "BC", "BD", "GF", "total_cost",
}

// WriteCSV writes one row per time step: the inputs, every flow, stored
// energy and SoC, the three indicators, and the run's total cost replicated
// in the trailing column.
func WriteCSV(w io.Writer, res *model.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	cost := formatFloat(res.TotalCost)
	for t := 0; t < res.Steps(); t++ {
		rec := []string{
			res.Times[t].Format(time.RFC3339),
			formatFloat(res.Solar[t]),
			formatFloat(res.Load[t]),
			formatFloat(res.SolarHousehold[t]),
			formatFloat(res.SolarBattery[t]),
			formatFloat(res.SolarGrid[t]),
			formatFloat(res.BatteryHousehold[t]),
			formatFloat(res.GridBattery[t]),
			formatFloat(res.GridHousehold[t]),
			formatFloat(res.StoredEnergy[t]),
			formatFloat(res.SoCPercent[t]),
			formatIndicator(res.Charging[t]),
			formatIndicator(res.Discharging[t]),
			formatIndicator(res.FromGrid[t]),
			cost,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonResult is the JSON wire form of a result: per-step rows plus the run
// scalars reported once.
type jsonResult struct {
	RunID     string    `json:"run_id"`
	TotalCost float64   `json:"total_cost"`
	Optimal   bool      `json:"optimal"`
	Steps     []jsonRow `json:"steps"`
}

type jsonRow struct {
	Time             time.Time `json:"time"`
	SolarProduction  float64   `json:"solar_production"`
	LoadDemand       float64   `json:"load_demand"`
	SolarHousehold   float64   `json:"p_solar_household"`
	SolarBattery     float64   `json:"p_solar_battery"`
	SolarGrid        float64   `json:"p_solar_grid"`
	BatteryHousehold float64   `json:"p_battery_household"`
	GridBattery      float64   `json:"p_grid_battery"`
	GridHousehold    float64   `json:"p_grid_household"`
	StoredEnergy     float64   `json:"se_kwh"`
	SoCPercent       float64   `json:"soc_percent"`
	Charging         bool      `json:"charging"`
	Discharging      bool      `json:"discharging"`
	FromGrid         bool      `json:"from_grid"`
}

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, res *model.Result) error {
	out := jsonResult{RunID: res.RunID, TotalCost: res.TotalCost, Optimal: res.Optimal}
	for t := 0; t < res.Steps(); t++ {
		out.Steps = append(out.Steps, jsonRow{
			Time:             res.Times[t],
			SolarProduction:  res.Solar[t],
			LoadDemand:       res.Load[t],
			SolarHousehold:   res.SolarHousehold[t],
			SolarBattery:     res.SolarBattery[t],
			SolarGrid:        res.SolarGrid[t],
			BatteryHousehold: res.BatteryHousehold[t],
			GridBattery:      res.GridBattery[t],
			GridHousehold:    res.GridHousehold[t],
			StoredEnergy:     res.StoredEnergy[t],
			SoCPercent:       res.SoCPercent[t],
			Charging:         res.Charging[t],
			Discharging:      res.Discharging[t],
			FromGrid:         res.FromGrid[t],
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// ReadCSV parses a schedule previously written by WriteCSV.
func ReadCSV(r io.Reader) (*model.Result, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected header with %d columns", len(header))
	}

	res := &model.Result{Optimal: true}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("parse time %q: %w", rec[0], err)
		}
		fields := make([]float64, len(rec)-1)
		for i, raw := range rec[1:] {
			if fields[i], err = strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("parse %s %q: %w", csvHeader[i+1], raw, err)
			}
		}
		res.Times = append(res.Times, ts)
		res.Solar = append(res.Solar, fields[0])
		res.Load = append(res.Load, fields[1])
		res.SolarHousehold = append(res.SolarHousehold, fields[2])
		res.SolarBattery = append(res.SolarBattery, fields[3])
		res.SolarGrid = append(res.SolarGrid, fields[4])
		res.BatteryHousehold = append(res.BatteryHousehold, fields[5])
		res.GridBattery = append(res.GridBattery, fields[6])
		res.GridHousehold = append(res.GridHousehold, fields[7])
		res.StoredEnergy = append(res.StoredEnergy, fields[8])
		res.SoCPercent = append(res.SoCPercent, fields[9])
		res.Charging = append(res.Charging, fields[10] > 0.5)
		res.Discharging = append(res.Discharging, fields[11] > 0.5)
		res.FromGrid = append(res.FromGrid, fields[12] > 0.5)
		res.TotalCost = fields[13]
	}
	return res, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatIndicator(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
