// Package listing holds the pagination and filtering logic shared by the
// list controllers.
package listing

// Phase is the load state of a list.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the observable load state of a list. Err is set only when
// Phase is PhaseFailed.
type State struct {
	Phase Phase
	Err   error
}

// Message returns the error text of a failed state.
func (s State) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
