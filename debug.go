package fsm

import (
	"log/slog"

	"github.com/enetx/g"
)

// AttachLogger adds a transition hook that logs every committed transition to l.
func AttachLogger[ID comparable, C any](m *Machine[ID, C], l *slog.Logger) *Machine[ID, C] {
	if l == nil {
		return m
	}

	return m.OnTransition(func(t Transition[ID]) {
		l.Info("fsm transition",
			slog.String("from", string(optionLabel(t.From))),
			slog.String("to", string(m.label(t.To))),
			slog.Bool("forced", t.Forced),
			slog.Uint64("tick", t.Tick),
		)
	})
}

func optionLabel[ID comparable](o g.Option[ID]) g.String {
	if o.IsNone() {
		return "none"
	}

	return idLabel(o.Some())
}
