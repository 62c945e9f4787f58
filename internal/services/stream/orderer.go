package stream

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/itree/internal/config"
	"github.com/temirov/itree/internal/types"
)

// Orderer turns crawler events into render directives. A directory is held back until
// something beneath it is known to be rendered, so directories with nothing to show vanish.
type Orderer struct {
	configuration *config.Configuration
	pending       []types.DiscoveredItem
}

// NewOrderer builds an orderer; a nil configuration disables filtering and folding.
func NewOrderer(configuration *config.Configuration) *Orderer {
	if configuration == nil {
		configuration = &config.Configuration{}
	}
	return &Orderer{configuration: configuration}
}

// Accept consumes one event and returns the directives it releases, in output order.
func (orderer *Orderer) Accept(event Event) []RenderDirective {
	switch event.Kind {
	case EventKindDirectory:
		if event.Directory == nil {
			return nil
		}
		return orderer.acceptDirectory(*event.Directory)
	case EventKindFiles:
		return orderer.acceptFiles(event.Files)
	case EventKindDiagnostic:
		if event.Diagnostic == nil {
			return nil
		}
		directives := orderer.flush()
		return append(directives, RenderDirective{
			Kind:       DirectiveKindDiagnostic,
			Depth:      event.Diagnostic.Depth + 1,
			IsLast:     true,
			IsLeaf:     true,
			Diagnostic: &Diagnostic{Path: event.Diagnostic.Path, Message: event.Diagnostic.Message},
		})
	default:
		return nil
	}
}

// Finish drops directories that never received rendered content and reports how many there were.
func (orderer *Orderer) Finish() int {
	dropped := len(orderer.pending)
	orderer.pending = nil
	return dropped
}

// Pending reports how many directories are currently held back.
func (orderer *Orderer) Pending() int {
	return len(orderer.pending)
}

func (orderer *Orderer) acceptDirectory(directory types.DiscoveredItem) []RenderDirective {
	orderer.evict(directory.Depth)
	if directory.IsIgnored {
		return []RenderDirective{directoryDirective(directory, true)}
	}
	orderer.pending = append(orderer.pending, directory)
	return nil
}

func (orderer *Orderer) acceptFiles(files []types.DiscoveredItem) []RenderDirective {
	visible := files
	if orderer.configuration.Filter != nil {
		visible = make([]types.DiscoveredItem, 0, len(files))
		for _, file := range files {
			if orderer.configuration.Filter.Matches(filepath.Base(file.Path)) {
				visible = append(visible, file)
			}
		}
	}
	fileDirectives := foldFiles(visible, orderer.configuration.FoldThreshold, orderer.configuration.FoldingEnabled)
	if len(fileDirectives) == 0 {
		return nil
	}
	return append(orderer.flush(), fileDirectives...)
}

// evict discards pending directories that cannot be ancestors of an entry at depth.
func (orderer *Orderer) evict(depth int) {
	retained := 0
	for retained < len(orderer.pending) && orderer.pending[retained].Depth < depth {
		retained++
	}
	orderer.pending = orderer.pending[:retained]
}

func (orderer *Orderer) flush() []RenderDirective {
	if len(orderer.pending) == 0 {
		return nil
	}
	directives := make([]RenderDirective, 0, len(orderer.pending))
	for _, directory := range orderer.pending {
		directives = append(directives, directoryDirective(directory, directory.IsIgnored && directory.IsLastSibling))
	}
	orderer.pending = orderer.pending[:0]
	return directives
}

func directoryDirective(directory types.DiscoveredItem, isLeaf bool) RenderDirective {
	return RenderDirective{
		Kind:      DirectiveKindDirectory,
		Depth:     directory.Depth,
		IsLast:    directory.IsLastSibling,
		IsLeaf:    isLeaf,
		Directory: &DirectoryEntry{Path: directory.Path, Ignored: directory.IsIgnored},
	}
}

// Order reads events from in until it is closed and sends the resulting directives to out.
func Order(ctx context.Context, configuration *config.Configuration, logger *zap.Logger, in <-chan Event, out chan<- RenderDirective) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if in == nil {
		return fmt.Errorf("stream: event channel is nil")
	}
	orderer := NewOrderer(configuration)
	emitter := newEmitter(ctx, out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-in:
			if !ok {
				if dropped := orderer.Finish(); dropped > 0 {
					logger.Debug("dropped directories without rendered content", zap.Int("count", dropped))
				}
				return nil
			}
			for _, directive := range orderer.Accept(event) {
				if err := emitter.send(directive); err != nil {
					return err
				}
			}
		}
	}
}
