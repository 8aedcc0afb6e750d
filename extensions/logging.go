// Package extensions holds VM extensions — cross-cutting dispatch hooks
// that wrap every atom invocation (logging, tracing) without the built-in
// atoms or the executor needing to know they exist.
package extensions

import (
	"context"
	"log/slog"
	"time"

	agent "github.com/tonioloewald/agent-99"
)

// LoggingExtension logs every atom dispatch at debug level and every run's
// start/end at info level, grounded on the teacher's fmt.Printf-based
// LoggingExtension (extensions/logging.go) but rebuilt on log/slog so
// structured fields (op, run id, duration) survive log aggregation.
type LoggingExtension struct {
	agent.BaseExtension
	log *slog.Logger
}

// NewLoggingExtension creates a logging extension. A nil logger falls back
// to slog.Default().
func NewLoggingExtension(log *slog.Logger) *LoggingExtension {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingExtension{BaseExtension: agent.NewBaseExtension("logging"), log: log}
}

func (e *LoggingExtension) Wrap(ctx context.Context, next func() (any, error), op *agent.Operation) (any, error) {
	start := time.Now()
	result, err := next()
	dur := time.Since(start)

	if err != nil {
		e.log.Debug("atom dispatch failed", "op", op.Op, "run_id", op.RC.RunID, "duration", dur, "error", err)
	} else {
		e.log.Debug("atom dispatched", "op", op.Op, "run_id", op.RC.RunID, "duration", dur)
	}
	return result, err
}

func (e *LoggingExtension) OnRunStart(rc *agent.RuntimeContext, ast agent.Step) {
	e.log.Info("run started", "run_id", rc.RunID)
}

func (e *LoggingExtension) OnRunEnd(rc *agent.RuntimeContext, result agent.RunResult, err error) {
	if err != nil {
		e.log.Info("run failed", "run_id", rc.RunID, "fuel_used", result.FuelUsed, "error", err)
		return
	}
	e.log.Info("run completed", "run_id", rc.RunID, "fuel_used", result.FuelUsed)
}

func (e *LoggingExtension) OnPanic(op *agent.Operation, recovered any, stack []byte) {
	e.log.Error("atom panicked", "op", op.Op, "run_id", op.RC.RunID, "recovered", recovered)
}
