// Package sink defines where solved schedules can be recorded besides the
// primary file output.
package sink

import (
	"context"

	"github.com/mlaoire/pvdispatch/core/model"
)

// Sink records a solved schedule in an external system.
type Sink interface {
	RecordResult(ctx context.Context, res *model.Result) error
}

// Nop discards every result.
type Nop struct{}

func (Nop) RecordResult(context.Context, *model.Result) error { return nil }

// Multi fans a result out to several sinks and returns the first error.
type Multi struct {
	sinks []Sink
}

// NewMulti combines the given sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) RecordResult(ctx context.Context, res *model.Result) error {
	for _, s := range m.sinks {
		if err := s.RecordResult(ctx, res); err != nil {
			return err
		}
	}
	return nil
}
