// Package influx records solved schedules in InfluxDB.
package influx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/mlaoire/pvdispatch/core/model"
	"github.com/mlaoire/pvdispatch/core/sink"
	"github.com/mlaoire/pvdispatch/infra/logger"
)

// Config defines the InfluxDB connection parameters.
type Config struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
}

// Sink writes schedules to an InfluxDB instance using the official client.
type Sink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewSink creates a sink for the given InfluxDB endpoint.
func NewSink(cfg Config) *Sink {
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &Sink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewSinkWithFallback pings the InfluxDB instance and returns a no-op sink
// when the health check fails, so a missing database never fails a run.
func NewSinkWithFallback(cfg Config) sink.Sink {
	s := NewSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := s.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			s.log.Errorf("influx health check error: %v", err)
		} else {
			s.log.Errorf("influx health status: %s", health.Status)
		}
		s.client.Close()
		return sink.Nop{}
	}
	return s
}

// RecordResult writes one point per time step plus a run-level point with
// the total cost. Points share the run_id tag.
func (s *Sink) RecordResult(ctx context.Context, res *model.Result) error {
	wctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for t := 0; t < res.Steps(); t++ {
		p := write.NewPointWithMeasurement("dispatch_step").
			AddTag("run_id", res.RunID).
			AddTag("from_grid", strconv.FormatBool(res.FromGrid[t])).
			AddField("solar_production_w", res.Solar[t]).
			AddField("load_demand_w", res.Load[t]).
			AddField("p_solar_household_w", res.SolarHousehold[t]).
			AddField("p_solar_battery_w", res.SolarBattery[t]).
			AddField("p_solar_grid_w", res.SolarGrid[t]).
			AddField("p_battery_household_w", res.BatteryHousehold[t]).
			AddField("p_grid_battery_w", res.GridBattery[t]).
			AddField("p_grid_household_w", res.GridHousehold[t]).
			AddField("stored_energy_kwh", res.StoredEnergy[t]).
			AddField("soc_percent", res.SoCPercent[t]).
			AddField("charging", res.Charging[t]).
			AddField("discharging", res.Discharging[t]).
			SetTime(res.Times[t])
		if err := s.writeAPI.WritePoint(wctx, p); err != nil {
			return err
		}
	}

	run := write.NewPointWithMeasurement("dispatch_run").
		AddTag("run_id", res.RunID).
		AddTag("optimal", strconv.FormatBool(res.Optimal)).
		AddField("total_cost", res.TotalCost).
		AddField("steps", res.Steps()).
		SetTime(res.Times[0])
	return s.writeAPI.WritePoint(wctx, run)
}

// Close releases the underlying client.
func (s *Sink) Close() { s.client.Close() }
