package measure

import (
	"time"

	"github.com/askiada/go-pipeline-flow/pkg/flow/command"
)

type commandObserver struct {
	m Measure
}

// CommandObserver records command durations into m, one metric per command label.
func CommandObserver(m Measure) command.Observer {
	return &commandObserver{m: m}
}

func (o *commandObserver) OnDo(label string, elapsed time.Duration) {
	o.m.AddMetric(label).AddDuration(DoKind, elapsed)
}

func (o *commandObserver) OnUndo(label string, elapsed time.Duration) {
	o.m.AddMetric(label).AddDuration(UndoKind, elapsed)
}

func (o *commandObserver) OnRedo(label string, elapsed time.Duration) {
	o.m.AddMetric(label).AddDuration(RedoKind, elapsed)
}
