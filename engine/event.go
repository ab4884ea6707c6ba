package engine

type EventKind int

const (
	EventThought EventKind = iota
	EventToolCall
	EventObservation
	EventDelegate
	EventWorkerResult
	EventRetry
	EventCorrection
)

func (k EventKind) String() string {
	switch k {
	case EventThought:
		return "thought"
	case EventToolCall:
		return "tool_call"
	case EventObservation:
		return "observation"
	case EventDelegate:
		return "delegate"
	case EventWorkerResult:
		return "worker_result"
	case EventRetry:
		return "retry"
	case EventCorrection:
		return "correction"
	default:
		return "unknown"
	}
}

// Event is a progress notice for whoever renders the loop to a person.
// Actor is the loop label ("agent", "coordinator" or a worker role).
type Event struct {
	Kind  EventKind
	Actor string
	Name  string
	Text  string
	OK    bool
}

type Observer func(Event)
