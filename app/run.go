// Package app wires the full optimization workflow: ingest the series, map
// the tariff, build the MILP, solve it and deliver the results.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mlaoire/pvdispatch/config"
	"github.com/mlaoire/pvdispatch/core/milp"
	"github.com/mlaoire/pvdispatch/core/model"
	"github.com/mlaoire/pvdispatch/core/sink"
	"github.com/mlaoire/pvdispatch/core/solve"
	"github.com/mlaoire/pvdispatch/infra/engine"
	"github.com/mlaoire/pvdispatch/infra/influx"
	"github.com/mlaoire/pvdispatch/infra/logger"
	"github.com/mlaoire/pvdispatch/infra/mqtt"
	"github.com/mlaoire/pvdispatch/internal/loader"
	"github.com/mlaoire/pvdispatch/pkg/export"
	"github.com/mlaoire/pvdispatch/pkg/summary"
)

// Run executes one optimization run end to end and returns the result.
func Run(ctx context.Context, cfg *config.Config) (*model.Result, error) {
	log := logger.New("app")

	series, err := loader.ReadFile(cfg.Input.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	if cfg.Input.StepMinutes > 0 {
		series.StepMinutes = cfg.Input.StepMinutes
	}
	log.Infof("loaded %d time steps from %s", series.Steps(), cfg.Input.CSVPath)

	buyRates := cfg.Costs.Rates().Map(series.Times)

	m, vars, err := milp.Build(series, cfg.Battery, cfg.Costs.SellPrice, buyRates)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	log.Infof("model built: %d columns (%d binary), %d rows", m.NumCols(), m.NumBinaries(), m.NumRows())

	solver := solve.New(engine.New(logger.New("engine")), logger.New("solver"))
	res, err := solver.Run(ctx, m, vars, series, cfg.Battery, cfg.Solver.Controls())
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	if err := writeOutputs(cfg.Output, res); err != nil {
		return nil, err
	}
	recordSinks(ctx, cfg, res, log)

	sum := summary.Compute(res, series.StepMinutes)
	if err := sum.Write(os.Stdout); err != nil {
		return nil, err
	}
	return res, nil
}

func writeOutputs(cfg config.OutputConfig, res *model.Result) error {
	if cfg.CSVPath != "" {
		if err := writeFile(cfg.CSVPath, res, export.WriteCSV); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if cfg.JSONPath != "" {
		if err := writeFile(cfg.JSONPath, res, export.WriteJSON); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	return nil
}

func writeFile(path string, res *model.Result, write func(w io.Writer, res *model.Result) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// recordSinks delivers the schedule to the optional sinks. Sink failures
// are logged, never fatal: the result on disk is the source of truth.
func recordSinks(ctx context.Context, cfg *config.Config, res *model.Result, log logger.Logger) {
	var sinks []sink.Sink
	if cfg.Influx.Enabled {
		sinks = append(sinks, influx.NewSinkWithFallback(cfg.Influx))
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			log.Errorf("mqtt publisher: %v", err)
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
		}
	}
	if len(sinks) == 0 {
		return
	}
	if err := sink.NewMulti(sinks...).RecordResult(ctx, res); err != nil {
		log.Errorf("record result: %v", err)
	}
}
