// Package launcher starts game processes with os/exec.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/zerr"
)

// connectFlag is passed to the game together with the server address.
const connectFlag = "--connect"

// Launcher implements ports.Launcher.
// Launched games are not bound to the caller's context or to the launcher's
// process: they run in their own session, write their output to
// domain.GameLogFileName inside the build directory, and keep running after
// the launcher exits. While the launcher lives, exits are reaped and logged.
type Launcher struct {
	logger ports.Logger
	wg     sync.WaitGroup
}

// New creates a Launcher that reports game exits to logger.
func New(logger ports.Logger) *Launcher {
	return &Launcher{logger: logger}
}

// Launch starts req.Executable inside req.Dir and returns once it is running.
func (l *Launcher) Launch(ctx context.Context, req ports.LaunchRequest) error {
	if err := ctx.Err(); err != nil {
		return zerr.Wrap(errors.Join(domain.ErrLaunchFailed, err), "launch")
	}

	path := filepath.Join(req.Dir, req.Executable)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return zerr.With(zerr.Wrap(domain.ErrExecutableNotFound, "launch"), "path", path)
	}
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrLaunchFailed, err), "launch"), "path", path)
	}

	logPath := filepath.Join(req.Dir, domain.GameLogFileName)
	//nolint:gosec // the build directory is owned by the install root
	out, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.FilePerm)
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrLaunchFailed, err), "launch"), "path", logPath)
	}
	// The child holds its own descriptor once started.
	defer func() {
		_ = out.Close()
	}()

	var args []string
	if req.Address != "" {
		args = append(args, connectFlag, req.Address)
	}

	//nolint:gosec,noctx // the game must outlive the request context
	cmd := exec.Command(path, args...)
	cmd.Dir = req.Dir
	cmd.Env = os.Environ()
	cmd.Stdout = out
	cmd.Stderr = out
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrLaunchFailed, err), "launch"), "path", path)
	}

	name := filepath.Base(req.Dir)
	l.logger.Info(fmt.Sprintf("started %s (pid %d), output in %s", path, cmd.Process.Pid, logPath))

	l.wg.Add(1)
	go l.reap(cmd, name)
	return nil
}

// Wait blocks until every launched process has exited.
func (l *Launcher) Wait() {
	l.wg.Wait()
}

// reap waits for the process and logs how it ended.
func (l *Launcher) reap(cmd *exec.Cmd, name string) {
	defer l.wg.Done()

	if err := cmd.Wait(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		l.logger.Warn(fmt.Sprintf("%s exited with code %d", name, exitCode))
		return
	}
	l.logger.Info(name + " exited")
}

var _ ports.Launcher = (*Launcher)(nil)
