package loader

import (
	"strings"
	"testing"
)

func TestRead_Basic(t *testing.T) {
	csv := `updated_time,production_power_w,consumption_power_w
2023-06-21 00:00:00,0,350.5
2023-06-21 00:05:00,0,340
2023-06-21 00:10:00,12.5,330
`
	s, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.Steps() != 3 {
		t.Fatalf("expected 3 steps got %d", s.Steps())
	}
	if s.StepMinutes != 5 {
		t.Errorf("step minutes %v, want 5", s.StepMinutes)
	}
	if s.Solar[2] != 12.5 || s.Load[0] != 350.5 {
		t.Errorf("unexpected values: solar %v, load %v", s.Solar[2], s.Load[0])
	}
}

func TestRead_MissingValuesAreZero(t *testing.T) {
	csv := `updated_time,production_power_w,consumption_power_w
2023-06-21 00:00:00,,200
2023-06-21 00:05:00,100,
`
	s, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.Solar[0] != 0 {
		t.Errorf("missing solar should be 0, got %v", s.Solar[0])
	}
	if s.Load[1] != 0 {
		t.Errorf("missing load should be 0, got %v", s.Load[1])
	}
}

func TestRead_ExtraColumnsIgnored(t *testing.T) {
	csv := `site,updated_time,production_power_w,consumption_power_w,battery_power_w
1,2023-06-21T10:00:00,1500,400,0
1,2023-06-21T10:05:00,1520,410,0
`
	s, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.Solar[1] != 1520 {
		t.Errorf("solar %v, want 1520", s.Solar[1])
	}
}

func TestRead_MissingColumn(t *testing.T) {
	csv := `updated_time,production_power_w
2023-06-21 00:00:00,0
`
	if _, err := Read(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for missing consumption column")
	}
}

func TestRead_UnsortedRows(t *testing.T) {
	csv := `updated_time,production_power_w,consumption_power_w
2023-06-21 00:05:00,0,100
2023-06-21 00:00:00,0,100
`
	if _, err := Read(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for non-increasing timestamps")
	}
}

func TestRead_SingleRowFallsBackToDefaultStep(t *testing.T) {
	csv := `updated_time,production_power_w,consumption_power_w
2023-06-21 00:00:00,50,100
`
	s, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.StepMinutes != 5 {
		t.Errorf("step minutes %v, want default 5", s.StepMinutes)
	}
}

func TestRead_BadTimestamp(t *testing.T) {
	csv := `updated_time,production_power_w,consumption_power_w
yesterday,0,100
`
	if _, err := Read(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}
