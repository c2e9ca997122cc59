package measure

import (
	"sync"
	"time"
)

type OperationInfo struct {
	Elapsed time.Duration
	Total   int64
}

type DefaultMetric struct {
	mu         sync.Mutex
	operations map[Kind]*OperationInfo
}

func (mt *DefaultMetric) AddDuration(kind Kind, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.operations[kind] == nil {
		mt.operations[kind] = &OperationInfo{}
	}
	op := mt.operations[kind]
	op.Elapsed += elapsed
	op.Total++
}

func (mt *DefaultMetric) AVGDuration(kind Kind) time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	op := mt.operations[kind]
	if op == nil || op.Total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(op.Elapsed) / float64(op.Total)))
}

func (mt *DefaultMetric) Count(kind Kind) int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if op := mt.operations[kind]; op != nil {
		return op.Total
	}

	return 0
}

func (mt *DefaultMetric) TotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	var total time.Duration
	for _, op := range mt.operations {
		total += op.Elapsed
	}

	return total
}

// AllOperations returns a copy of the per-kind totals.
func (mt *DefaultMetric) AllOperations() map[Kind]*OperationInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	res := make(map[Kind]*OperationInfo, len(mt.operations))
	for kind, op := range mt.operations {
		cp := *op
		res[kind] = &cp
	}

	return res
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
