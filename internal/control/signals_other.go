//go:build !unix

package control

import "os"

// Only interrupt is portable; pause, resume and restart need the HTTP or
// Telegram source here.
func signalActions() map[os.Signal]Action {
	return map[os.Signal]Action{
		os.Interrupt: ActionKill,
	}
}
