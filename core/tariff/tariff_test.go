package tariff

import (
	"testing"
	"time"
)

var testRates = Rates{Boost: 0.1052, Night: 0.1792, Day: 0.3634}

func at(hour, minute int) time.Time {
	return time.Date(2023, 6, 21, hour, minute, 0, 0, time.Local)
}

func TestRate_Bands(t *testing.T) {
	cases := []struct {
		name string
		ts   time.Time
		want float64
	}{
		{"boost start", at(2, 0), testRates.Boost},
		{"boost middle", at(3, 59), testRates.Boost},
		{"boost end is night", at(4, 0), testRates.Night},
		{"night before boost", at(1, 59), testRates.Night},
		{"night late evening", at(23, 0), testRates.Night},
		{"night early morning", at(7, 59), testRates.Night},
		{"day start", at(8, 0), testRates.Day},
		{"day noon", at(12, 30), testRates.Day},
		{"day end", at(22, 59), testRates.Day},
	}
	for _, c := range cases {
		if got := testRates.Rate(c.ts); got != c.want {
			t.Errorf("%s: rate(%s) = %v, want %v", c.name, c.ts, got, c.want)
		}
	}
}

func TestMap_OneRatePerStep(t *testing.T) {
	times := []time.Time{at(1, 0), at(3, 0), at(12, 0)}
	rates := testRates.Map(times)
	if len(rates) != len(times) {
		t.Fatalf("expected %d rates got %d", len(times), len(rates))
	}
	want := []float64{testRates.Night, testRates.Boost, testRates.Day}
	for i := range want {
		if rates[i] != want[i] {
			t.Errorf("step %d: got %v want %v", i, rates[i], want[i])
		}
	}
}

func TestMap_Empty(t *testing.T) {
	if rates := testRates.Map(nil); len(rates) != 0 {
		t.Fatalf("expected empty mapping got %v", rates)
	}
}
