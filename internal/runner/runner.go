// Package runner launches report scripts as child processes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
)

// Runner executes `<interpreter> <script>` with the project directory as the
// child's working directory, so the script's own relative file references
// resolve correctly. The parent process never changes its own directory.
type Runner struct {
	interpreter string
	workDir     string
}

func New(interpreter, workDir string) *Runner {
	return &Runner{interpreter: interpreter, workDir: workDir}
}

// Run launches the script and blocks until it exits, with stdout and stderr
// both attached to out. A non-zero child exit is not an error: the code is
// returned and the caller decides what to do with it. Only a failure to
// launch the process at all (missing interpreter, bad working directory)
// returns an error.
func (r *Runner) Run(ctx context.Context, script string, out io.Writer) (int, error) {
	scriptPath := script
	if !filepath.IsAbs(scriptPath) {
		scriptPath = filepath.Join(r.workDir, script)
	}
	cmd := exec.CommandContext(ctx, r.interpreter, scriptPath)
	cmd.Dir = r.workDir
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("launching %s %s: %w", r.interpreter, scriptPath, err)
	}
	return 0, nil
}
