package model

import (
	"testing"
	"time"
)

func testTimes(n int) []time.Time {
	start := time.Date(2023, 6, 21, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * 5 * time.Minute)
	}
	return times
}

func TestSeries_Validate(t *testing.T) {
	ok := Series{Times: testTimes(2), Solar: []float64{0, 100}, Load: []float64{50, 50}, StepMinutes: 5}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid series rejected: %v", err)
	}

	cases := []struct {
		name string
		s    Series
	}{
		{"empty", Series{}},
		{"length mismatch", Series{Times: testTimes(2), Solar: []float64{0}, Load: []float64{1, 2}}},
		{"negative solar", Series{Times: testTimes(1), Solar: []float64{-5}, Load: []float64{0}}},
		{"negative load", Series{Times: testTimes(1), Solar: []float64{0}, Load: []float64{-1}}},
	}
	for _, c := range cases {
		if err := c.s.Validate(); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestSeries_ConversionFactor(t *testing.T) {
	five := Series{StepMinutes: 5}
	if got, want := five.ConversionFactor(), 5.0/60/1000; got != want {
		t.Errorf("5-minute factor %v, want %v", got, want)
	}
	hour := Series{StepMinutes: 60}
	if got, want := hour.ConversionFactor(), 0.001; got != want {
		t.Errorf("60-minute factor %v, want %v", got, want)
	}
	unset := Series{}
	if got := unset.ConversionFactor(); got != 5.0/60/1000 {
		t.Errorf("default factor %v", got)
	}
}

func TestSeries_Maxima(t *testing.T) {
	s := Series{Times: testTimes(3), Solar: []float64{10, 300, 20}, Load: []float64{5, 0, 80}}
	if s.MaxSolar() != 300 {
		t.Errorf("max solar %v", s.MaxSolar())
	}
	if s.MaxLoad() != 80 {
		t.Errorf("max load %v", s.MaxLoad())
	}
}

func TestBattery_Validate(t *testing.T) {
	ok := Battery{CapacityKWh: 4.8, MinSoC: 0.11, MaxSoC: 1, InitialSoC: 0.22,
		ChargeEfficiency: 0.95, DischargeEfficiency: 0.95, MaxChargeRate: 2780, MaxDischargeRate: 2370}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid battery rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Battery)
	}{
		{"negative capacity", func(b *Battery) { b.CapacityKWh = -1 }},
		{"inverted soc window", func(b *Battery) { b.MinSoC = 0.9; b.MaxSoC = 0.5 }},
		{"soc above one", func(b *Battery) { b.MaxSoC = 1.5 }},
		{"initial out of range", func(b *Battery) { b.InitialSoC = 1.2 }},
		{"zero charge efficiency", func(b *Battery) { b.ChargeEfficiency = 0 }},
		{"efficiency above one", func(b *Battery) { b.DischargeEfficiency = 1.1 }},
		{"negative rate", func(b *Battery) { b.MaxDischargeRate = -10 }},
	}
	for _, c := range cases {
		b := ok
		c.mutate(&b)
		if err := b.Validate(); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}
