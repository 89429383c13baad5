package model

import "time"

// Result holds the solved dispatch schedule. It is created only after a
// successful solve and is never partially populated.
type Result struct {
	RunID string

	Times []time.Time
	Solar []float64 // input solar production, W
	Load  []float64 // input load demand, W

	// Optimal power flows, W.
	SolarHousehold   []float64
	SolarBattery     []float64
	SolarGrid        []float64
	BatteryHousehold []float64
	GridBattery      []float64
	GridHousehold    []float64

	StoredEnergy []float64 // battery stored energy, kWh
	SoCPercent   []float64 // stored energy as a percentage of capacity

	Charging    []bool // battery charging indicator
	Discharging []bool // battery discharging indicator
	FromGrid    []bool // grid flow direction indicator (true when importing)

	// TotalCost is the optimized objective value.
	TotalCost float64
	// Optimal reports whether the solution was proven optimal. It is false
	// when the best incumbent at the time limit was accepted instead.
	Optimal bool
}

// Steps returns the number of time steps covered by the result.
func (r *Result) Steps() int { return len(r.Times) }
