package etl

// State is the lifecycle position of a Pipeline. Runs only move forward:
// Idle, Extracted, Transforming, Finished.
type State int

const (
	Idle State = iota
	Extracted
	Transforming
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Extracted:
		return "extracted"
	case Transforming:
		return "transforming"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// hasData reports whether loads and transforms are allowed.
func (s State) hasData() bool { return s == Extracted || s == Transforming }
