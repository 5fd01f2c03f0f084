package ports

import (
	"context"

	"plugup.dev/cli/internal/core/domain/process"
)

// Executor runs one external command to completion and reports its result.
// A non-zero exit is returned as *process.ExitError with the Result
// populated; other errors mean the command could not be started at all.
type Executor interface {
	Run(ctx context.Context, cmd process.Command) (process.Result, error)
}
