package engine

import "github.com/Sternrassler/item-service/pkg/item"

// Kind is the state of one unit of work.
type Kind int

const (
	// KindPending means no outcome has been recorded yet.
	KindPending Kind = iota
	KindSucceeded
	KindSkipped
	KindFailed
)

// String returns the log/metric label of the kind.
func (k Kind) String() string {
	switch k {
	case KindSucceeded:
		return "succeeded"
	case KindSkipped:
		return "skipped"
	case KindFailed:
		return "failed"
	default:
		return "pending"
	}
}

// SkipReason explains a KindSkipped outcome.
type SkipReason string

const (
	SkipNotFound    SkipReason = "not_found"
	SkipInterrupted SkipReason = "interrupted"
)

// Outcome is the terminal result of processing one ID.
type Outcome struct {
	Kind   Kind
	ID     int64
	Item   *item.Item // set for KindSucceeded
	Reason SkipReason // set for KindSkipped
	Err    error      // cause for KindFailed and interrupted skips
}

// Succeeded builds a KindSucceeded outcome.
func Succeeded(it item.Item) Outcome {
	return Outcome{Kind: KindSucceeded, ID: it.ID, Item: &it}
}

// Skipped builds a KindSkipped outcome.
func Skipped(id int64, reason SkipReason, cause error) Outcome {
	return Outcome{Kind: KindSkipped, ID: id, Reason: reason, Err: cause}
}

// Failed builds a KindFailed outcome.
func Failed(id int64, cause error) Outcome {
	return Outcome{Kind: KindFailed, ID: id, Err: cause}
}

// Interrupted reports whether the unit stopped on cancellation.
func (o Outcome) Interrupted() bool {
	return o.Kind == KindSkipped && o.Reason == SkipInterrupted
}

// label is the value used for the outcome metric.
func (o Outcome) label() string {
	if o.Kind == KindSkipped {
		return "skipped_" + string(o.Reason)
	}
	return o.Kind.String()
}
