//go:build unix

package launcher

import (
	"os/exec"
	"syscall"
)

// detach starts the game in a new session, outside the launcher's process group.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
