// Package summary condenses a solved schedule into run-level figures.
package summary

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"

	"github.com/mlaoire/pvdispatch/core/model"
)

// Summary holds the headline figures of a run. Energy totals are in kWh.
type Summary struct {
	TotalCost       float64
	MeanSoCPercent  float64
	SolarProduction float64
	LoadDemand      float64
	GridPurchase    float64
	SolarExport     float64
}

// Compute derives the summary from a result. stepMinutes is the step
// duration used to convert the power series into energy.
func Compute(res *model.Result, stepMinutes float64) Summary {
	c := model.Series{StepMinutes: stepMinutes}.ConversionFactor()
	s := Summary{TotalCost: res.TotalCost}
	if res.Steps() > 0 {
		s.MeanSoCPercent = stat.Mean(res.SoCPercent, nil)
	}
	for t := 0; t < res.Steps(); t++ {
		s.SolarProduction += res.Solar[t] * c
		s.LoadDemand += res.Load[t] * c
		s.GridPurchase += (res.GridHousehold[t] + res.GridBattery[t]) * c
		s.SolarExport += res.SolarGrid[t] * c
	}
	return s
}

// Write renders the summary to w.
func (s Summary) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"Optimization summary\n"+
			"  Total cost:             %.2f\n"+
			"  Average SoC:            %.1f%%\n"+
			"  Total solar production: %.2f kWh\n"+
			"  Total load demand:      %.2f kWh\n"+
			"  Total grid purchase:    %.2f kWh\n"+
			"  Total solar export:     %.2f kWh\n",
		s.TotalCost, s.MeanSoCPercent, s.SolarProduction, s.LoadDemand, s.GridPurchase, s.SolarExport)
	return err
}
