package output

import (
	"errors"

	"github.com/temirov/itree/internal/services/stream"
)

type fanoutRenderer struct {
	renderers []StreamRenderer
}

// NewFanoutRenderer forwards every directive to each renderer in turn. Nil renderers are skipped.
func NewFanoutRenderer(renderers ...StreamRenderer) StreamRenderer {
	active := make([]StreamRenderer, 0, len(renderers))
	for _, renderer := range renderers {
		if renderer != nil {
			active = append(active, renderer)
		}
	}
	if len(active) == 1 {
		return active[0]
	}
	return &fanoutRenderer{renderers: active}
}

func (fanout *fanoutRenderer) Handle(directive stream.RenderDirective) error {
	for _, renderer := range fanout.renderers {
		if err := renderer.Handle(directive); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every renderer even when an earlier one fails.
func (fanout *fanoutRenderer) Flush() error {
	var flushErrors []error
	for _, renderer := range fanout.renderers {
		if err := renderer.Flush(); err != nil {
			flushErrors = append(flushErrors, err)
		}
	}
	return errors.Join(flushErrors...)
}
