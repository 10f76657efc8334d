package pipeline

// ChunkState is the lifecycle position of one chunk.
//
//	Pending -> Extracting -> Extracted -> Transcribing -> Succeeded
//	                |                          |  ^
//	                v                          v  |
//	        ExtractionFailed                Retrying
//	                                           |
//	                                           v
//	                                       Exhausted
type ChunkState int

// Chunk states.
const (
	Pending ChunkState = iota
	Extracting
	Extracted
	ExtractionFailed
	Transcribing
	Retrying
	Succeeded
	Exhausted
)

var stateNames = [...]string{
	Pending:          "pending",
	Extracting:       "extracting",
	Extracted:        "extracted",
	ExtractionFailed: "extraction-failed",
	Transcribing:     "transcribing",
	Retrying:         "retrying",
	Succeeded:        "succeeded",
	Exhausted:        "exhausted",
}

func (s ChunkState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// transitions lists the legal successors of each state.
var transitions = map[ChunkState][]ChunkState{
	Pending:      {Extracting},
	Extracting:   {Extracted, ExtractionFailed},
	Extracted:    {Transcribing},
	Transcribing: {Succeeded, Retrying, Exhausted},
	Retrying:     {Transcribing},
}

// CanTransition reports whether s may move to next.
func (s ChunkState) CanTransition(next ChunkState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s ChunkState) Terminal() bool {
	return s == Succeeded || s == Exhausted || s == ExtractionFailed
}
