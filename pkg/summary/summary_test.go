package summary

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/mlaoire/pvdispatch/core/model"
)

func testResult() *model.Result {
	start := time.Date(2023, 6, 21, 0, 0, 0, 0, time.UTC)
	return &model.Result{
		Times:         []time.Time{start, start.Add(5 * time.Minute)},
		Solar:         []float64{1200, 0},
		Load:          []float64{600, 600},
		SolarGrid:     []float64{600, 0},
		GridHousehold: []float64{0, 600},
		GridBattery:   []float64{0, 0},
		SoCPercent:    []float64{20, 40},
		TotalCost:     0.42,
	}
}

func TestCompute(t *testing.T) {
	s := Compute(testResult(), 5)

	c := 5.0 / 60 / 1000
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"total cost", s.TotalCost, 0.42},
		{"mean soc", s.MeanSoCPercent, 30},
		{"solar production", s.SolarProduction, 1200 * c},
		{"load demand", s.LoadDemand, 1200 * c},
		{"grid purchase", s.GridPurchase, 600 * c},
		{"solar export", s.SolarExport, 600 * c},
	}
	for _, cse := range cases {
		if math.Abs(cse.got-cse.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", cse.name, cse.got, cse.want)
		}
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Compute(testResult(), 5).Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total cost", "0.42", "Average SoC", "30.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}
