package influx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mlaoire/pvdispatch/core/model"
	"github.com/mlaoire/pvdispatch/core/sink"
)

func testResult() *model.Result {
	return &model.Result{
		RunID:            "run-7",
		Times:            []time.Time{time.Date(2023, 6, 21, 12, 0, 0, 0, time.UTC)},
		Solar:            []float64{1500},
		Load:             []float64{1000},
		SolarHousehold:   []float64{1000},
		SolarBattery:     []float64{0},
		SolarGrid:        []float64{500},
		BatteryHousehold: []float64{0},
		GridBattery:      []float64{0},
		GridHousehold:    []float64{0},
		StoredEnergy:     []float64{1.056},
		SoCPercent:       []float64{22},
		Charging:         []bool{false},
		Discharging:      []bool{false},
		FromGrid:         []bool{false},
		TotalCost:        -0.008,
		Optimal:          true,
	}
}

func TestSink_RecordResult(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewSink(Config{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer s.Close()

	if err := s.RecordResult(context.Background(), testResult()); err != nil {
		t.Fatalf("record: %v", err)
	}

	all := strings.Join(bodies, "\n")
	for _, want := range []string{"dispatch_step", "dispatch_run", "run_id=run-7", "total_cost="} {
		if !strings.Contains(all, want) {
			t.Errorf("line protocol missing %q:\n%s", want, all)
		}
	}
}

func TestNewSinkWithFallback_Unreachable(t *testing.T) {
	s := NewSinkWithFallback(Config{URL: "http://127.0.0.1:1", Token: "t", Org: "o", Bucket: "b"})
	if _, ok := s.(sink.Nop); !ok {
		t.Fatalf("expected Nop sink for unreachable instance, got %T", s)
	}
}
