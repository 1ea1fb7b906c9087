package critsec

// State is the phase of a single activation.
type State int

const (
	Idle State = iota
	Acquiring
	InSection
	Releasing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquiring:
		return "acquiring"
	case InSection:
		return "in section"
	case Releasing:
		return "releasing"
	default:
		return "unknown"
	}
}
