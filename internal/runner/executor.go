package runner

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
)

// Command is one framework invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// Output is what a finished command printed.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandExecutor runs commands to completion. A non-zero exit is reported
// through Output.ExitCode; the error is reserved for commands that could not
// run or were interrupted by ctx.
type CommandExecutor interface {
	Execute(ctx context.Context, cmd Command) (Output, error)
}

// ExecExecutor runs commands as child processes.
type ExecExecutor struct{}

var _ CommandExecutor = ExecExecutor{}

// NewExecExecutor creates an ExecExecutor.
func NewExecExecutor() ExecExecutor {
	return ExecExecutor{}
}

// Execute implements CommandExecutor.
func (ExecExecutor) Execute(ctx context.Context, cmd Command) (Output, error) {
	var stdout, stderr bytes.Buffer

	process := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	process.Dir = cmd.Dir
	process.Stdout = &stdout
	process.Stderr = &stderr

	err := process.Run()
	output := Output{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: process.ProcessState.ExitCode()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return output, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, nil
	}

	if err != nil {
		return output, errors.Wrapf(errors.ErrCodeRunnerFailed, err, "failed to start %s", cmd.Name)
	}

	return output, nil
}
