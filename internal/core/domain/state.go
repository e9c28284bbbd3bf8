package domain

// InitState is the lifecycle state of a tool's backend handles.
type InitState int

// Backend initialisation states.
const (
	// StateUninitialized means construction has not finished.
	StateUninitialized InitState = iota

	// StateReady means all backend handles were acquired.
	StateReady

	// StateFailed means acquisition failed; the tool fails every call.
	StateFailed
)

// String returns the string representation.
func (s InitState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return unknownDescription
	}
}

// Readiness carries an InitState and, when failed, the reason.
type Readiness struct {
	State  InitState
	Reason error
}

// Ready returns a ready Readiness.
func Ready() Readiness {
	return Readiness{State: StateReady}
}

// Failed returns a failed Readiness with the given reason.
func Failed(reason error) Readiness {
	return Readiness{State: StateFailed, Reason: reason}
}

// IsReady returns true if the backend handles are usable.
func (r Readiness) IsReady() bool {
	return r.State == StateReady
}
