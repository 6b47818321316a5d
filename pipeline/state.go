package pipeline

// State is a step in the life of one document.
//
//	Created -> Opened -> Extracted -> Chunked -> Validated -> Saved
//
// Any step may move to Failed. Skipped is reached from Created when a
// checkpoint shows the source was already processed with the same inputs.
type State int

const (
	StateCreated State = iota
	StateOpened
	StateExtracted
	StateChunked
	StateValidated
	StateSaved
	StateFailed
	StateSkipped
)

var stateNames = [...]string{
	StateCreated:   "created",
	StateOpened:    "opened",
	StateExtracted: "extracted",
	StateChunked:   "chunked",
	StateValidated: "validated",
	StateSaved:     "saved",
	StateFailed:    "failed",
	StateSkipped:   "skipped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == StateSaved || s == StateFailed || s == StateSkipped
}
