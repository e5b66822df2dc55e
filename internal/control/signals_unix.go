//go:build unix

package control

import (
	"os"
	"syscall"
)

func signalActions() map[os.Signal]Action {
	return map[os.Signal]Action{
		syscall.SIGUSR1: ActionPause,
		syscall.SIGUSR2: ActionResume,
		syscall.SIGHUP:  ActionRestart,
		syscall.SIGINT:  ActionKill,
		syscall.SIGTERM: ActionKill,
	}
}
