package launcher

import "time"

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseChecking  Phase = "checking"
	PhaseLaunching Phase = "launching"
	PhaseServing   Phase = "serving"
	PhaseStopped   Phase = "stopped"
	PhaseFailed    Phase = "failed"
)

// Status is a point-in-time view of a launcher, served on /status.
type Status struct {
	Phase      Phase     `json:"phase"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	BrowserPID int       `json:"browser_pid,omitempty"`
	ExitCode   int       `json:"exit_code"` // -1 until the sequence ends
	Error      string    `json:"error,omitempty"`
}

// Status returns a copy of the current state. Safe for concurrent use.
func (l *Launcher) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}
