// Package tariff maps timestamps onto time-of-use electricity purchase
// rates.
package tariff

import "time"

// Rates defines the purchase price per kWh for each time-of-use band.
type Rates struct {
	Boost float64 `json:"boost_rate"` // promotional window, cheapest
	Night float64 `json:"night_rate"`
	Day   float64 `json:"day_rate"`
}

// Rate returns the purchase rate applicable at the given local time. The
// boost window takes precedence over the wider night window.
func (r Rates) Rate(ts time.Time) float64 {
	hour := ts.Hour()
	switch {
	case hour >= 2 && hour < 4: // boost: 02:00 to 04:00
		return r.Boost
	case hour >= 23 || hour < 8: // night: 23:00 to 08:00
		return r.Night
	default:
		return r.Day
	}
}

// Map assigns a purchase rate to every time step. The caller guarantees one
// timestamp per step.
func (r Rates) Map(times []time.Time) []float64 {
	rates := make([]float64, len(times))
	for t, ts := range times {
		rates[t] = r.Rate(ts)
	}
	return rates
}
