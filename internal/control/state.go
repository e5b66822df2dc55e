// Package control lets an operator pause, resume, restart or kill a running
// scrape from outside the automation goroutine.
package control

import "sync/atomic"

// State holds the operator flags. Each flag is written by a signal source and
// read by the automation at safe points.
type State struct {
	paused           atomic.Bool
	killRequested    atomic.Bool
	restartRequested atomic.Bool
}

// Snapshot is a point-in-time copy of State.
type Snapshot struct {
	Paused           bool `json:"paused"`
	KillRequested    bool `json:"kill_requested"`
	RestartRequested bool `json:"restart_requested"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Paused:           s.paused.Load(),
		KillRequested:    s.killRequested.Load(),
		RestartRequested: s.restartRequested.Load(),
	}
}

func (s *State) reset() {
	s.paused.Store(false)
	s.killRequested.Store(false)
	s.restartRequested.Store(false)
}
