package event

// Queue is the FIFO the engine drains each tick. It is owned by exactly one
// engine for the lifetime of a run; no locking.
type Queue struct {
	events []Event
}

func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

func (q *Queue) Pop() (Event, bool) {
	if len(q.events) == 0 {
		return nil, false
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e, true
}

func (q *Queue) Len() int { return len(q.events) }
