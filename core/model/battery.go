package model

import "fmt"

// Battery describes the physical parameters of the storage system. Values
// are immutable for the duration of a run.
type Battery struct {
	CapacityKWh         float64 `json:"capacity_kwh"`
	MinSoC              float64 `json:"min_soc"`       // fraction of capacity
	MaxSoC              float64 `json:"max_soc"`       // fraction of capacity
	InitialSoC          float64 `json:"initial_soc"`   // fraction of capacity
	ChargeEfficiency    float64 `json:"charge_efficiency"`
	DischargeEfficiency float64 `json:"discharge_efficiency"`
	MaxChargeRate       float64 `json:"max_charge_rate"`    // W
	MaxDischargeRate    float64 `json:"max_discharge_rate"` // W
}

// Validate checks the battery parameters against their physical ranges.
func (b Battery) Validate() error {
	if b.CapacityKWh < 0 {
		return fmt.Errorf("battery: negative capacity %v", b.CapacityKWh)
	}
	if b.MinSoC < 0 || b.MaxSoC > 1 || b.MinSoC > b.MaxSoC {
		return fmt.Errorf("battery: invalid soc window [%v, %v]", b.MinSoC, b.MaxSoC)
	}
	if b.InitialSoC < 0 || b.InitialSoC > 1 {
		return fmt.Errorf("battery: initial soc %v out of [0,1]", b.InitialSoC)
	}
	if b.ChargeEfficiency <= 0 || b.ChargeEfficiency > 1 {
		return fmt.Errorf("battery: charge efficiency %v out of (0,1]", b.ChargeEfficiency)
	}
	if b.DischargeEfficiency <= 0 || b.DischargeEfficiency > 1 {
		return fmt.Errorf("battery: discharge efficiency %v out of (0,1]", b.DischargeEfficiency)
	}
	if b.MaxChargeRate < 0 || b.MaxDischargeRate < 0 {
		return fmt.Errorf("battery: negative rate limit")
	}
	return nil
}
