package measure

import (
	"sort"
	"sync"
)

type DefaultMeasure struct {
	mu       sync.Mutex
	Commands map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Commands: make(map[string]Metric),
	}
}

// AddMetric returns the metric for name, creating it on first use.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mt, ok := m.Commands[name]; ok {
		return mt
	}
	mt := &DefaultMetric{
		operations: make(map[Kind]*OperationInfo),
	}
	m.Commands[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Commands[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make(map[string]Metric, len(m.Commands))
	for name, mt := range m.Commands {
		res[name] = mt
	}

	return res
}

// Names returns the command labels seen so far, sorted.
func (m *DefaultMeasure) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]string, 0, len(m.Commands))
	for name := range m.Commands {
		res = append(res, name)
	}
	sort.Strings(res)

	return res
}

var _ Measure = (*DefaultMeasure)(nil)
