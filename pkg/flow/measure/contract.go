package measure

import "time"

// Kind is the stack operation a duration was recorded for.
type Kind string

const (
	DoKind   Kind = "do"
	UndoKind Kind = "undo"
	RedoKind Kind = "redo"
)

type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

type Metric interface {
	AddDuration(kind Kind, elapsed time.Duration)
	AVGDuration(kind Kind) time.Duration
	Count(kind Kind) int64
	TotalDuration() time.Duration
	AllOperations() map[Kind]*OperationInfo
}
