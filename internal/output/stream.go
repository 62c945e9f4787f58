package output

import (
	"github.com/temirov/itree/internal/services/stream"
)

// StreamRenderer consumes render directives in order and writes them on Flush at the latest.
type StreamRenderer interface {
	Handle(directive stream.RenderDirective) error
	Flush() error
}
