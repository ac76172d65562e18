package results

import "fmt"

type Status int

const (
	Idle Status = iota
	Loading
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Kind tells a replacing fetch from an appending one.
type Kind int

const (
	KindNewSearch Kind = iota
	KindLoadMore
)

func (k Kind) String() string {
	if k == KindLoadMore {
		return "load-more"
	}
	return "new-search"
}

// Outcome is how a fetch ended.
type Outcome int

const (
	FetchSucceeded Outcome = iota
	FetchFailed
	FetchAborted
)

func (o Outcome) String() string {
	switch o {
	case FetchSucceeded:
		return "succeeded"
	case FetchFailed:
		return "failed"
	case FetchAborted:
		return "aborted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// State is a snapshot of one search surface. HasMore always equals
// len(Items) < TotalCount.
type State[T any] struct {
	Query      string
	Status     Status
	Items      []T
	TotalCount int
	HasMore    bool
}

func (s State[T]) clone() State[T] {
	s.Items = append([]T(nil), s.Items...)
	return s
}

func (s *State[T]) recompute() {
	s.HasMore = len(s.Items) < s.TotalCount
}
