package selq

import (
	"context"
	"errors"
)

var ErrNoExecutor = errors.New("query builder has no executor")

// Row is one result row keyed by column name. Values are whatever the driver reported.
type Row map[string]any

// Executor runs a compiled statement with its bound parameters, in order, and returns every
// row or an error. Timeouts and cancellation come from ctx; the builder adds none.
type Executor interface {
	Execute(ctx context.Context, query string, args []any) ([]Row, error)
}

// ExecutorFunc lets an ordinary function serve as an Executor.
type ExecutorFunc func(ctx context.Context, query string, args []any) ([]Row, error)

func (f ExecutorFunc) Execute(ctx context.Context, query string, args []any) ([]Row, error) {
	return f(ctx, query, args)
}

// asExecutionError makes sure err is an *ExecutionError without wrapping one twice.
func asExecutionError(err error, query string, args []any) error {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return err
	}
	return &ExecutionError{Query: query, Args: args, Err: err}
}
