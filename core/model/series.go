package model

import (
	"fmt"
	"time"
)

// DefaultStepMinutes is the step duration assumed when it cannot be derived
// from the input timestamps.
const DefaultStepMinutes = 5.0

// Series holds the input time series for one optimization run. All slices
// have one entry per time step and the step duration is fixed across the
// horizon.
type Series struct {
	Times       []time.Time
	Solar       []float64 // solar production power in W
	Load        []float64 // household demand power in W
	StepMinutes float64
}

// Steps returns the number of time steps in the horizon.
func (s Series) Steps() int { return len(s.Times) }

// ConversionFactor converts power in W over one step into energy in kWh.
func (s Series) ConversionFactor() float64 {
	step := s.StepMinutes
	if step <= 0 {
		step = DefaultStepMinutes
	}
	return step / 60 / 1000
}

// MaxSolar returns the horizon-wide maximum solar production.
func (s Series) MaxSolar() float64 { return maxOf(s.Solar) }

// MaxLoad returns the horizon-wide maximum load demand.
func (s Series) MaxLoad() float64 { return maxOf(s.Load) }

func maxOf(vals []float64) float64 {
	m := 0.0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

// Validate checks that the series is well formed: a non-empty horizon,
// matching lengths and non-negative power values.
func (s Series) Validate() error {
	if len(s.Times) == 0 {
		return fmt.Errorf("series: empty horizon")
	}
	if len(s.Solar) != len(s.Times) || len(s.Load) != len(s.Times) {
		return fmt.Errorf("series: length mismatch: %d timestamps, %d solar, %d load",
			len(s.Times), len(s.Solar), len(s.Load))
	}
	for t, v := range s.Solar {
		if v < 0 {
			return fmt.Errorf("series: negative solar production %v at step %d", v, t)
		}
	}
	for t, v := range s.Load {
		if v < 0 {
			return fmt.Errorf("series: negative load demand %v at step %d", v, t)
		}
	}
	return nil
}
