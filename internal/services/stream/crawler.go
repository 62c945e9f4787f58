package stream

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/temirov/itree/internal/commands"
	"github.com/temirov/itree/internal/config"
	"github.com/temirov/itree/internal/utils"
)

const unreadableDirectoryMessageFormat = "cannot read directory: %s"

type emitter[T any] struct {
	ctx context.Context
	out chan<- T
}

func newEmitter[T any](ctx context.Context, out chan<- T) *emitter[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter[T]{ctx: ctx, out: out}
}

func (e *emitter[T]) send(value T) error {
	if e.out == nil {
		return fmt.Errorf("stream: output channel is nil")
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- value:
		return nil
	}
}

// Crawl walks root and sends its discoveries to out in traversal order.
func Crawl(ctx context.Context, root string, configuration *config.Configuration, logger *zap.Logger, out chan<- Event) error {
	if root == "" {
		return fmt.Errorf("stream: tree root path is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	emitter := newEmitter(ctx, out)
	options := commands.TreeWalkOptions{Root: root}
	if configuration != nil && configuration.Ignore != nil {
		options.IsIgnored = configuration.Ignore.IsIgnored
	}

	return commands.WalkTree(ctx, options, func(treeEvent commands.TreeEvent) error {
		switch treeEvent.Kind {
		case commands.TreeEventFiles:
			return emitter.send(Event{Kind: EventKindFiles, Files: treeEvent.Files})
		case commands.TreeEventDirectory:
			return emitter.send(Event{Kind: EventKindDirectory, Directory: treeEvent.Directory})
		case commands.TreeEventUnreadable:
			failure := treeEvent.Failure
			logger.Warn("skipping unreadable directory", zap.String("path", utils.RelativePathOrSelf(failure.Path, root)), zap.Error(failure.Err))
			return emitter.send(Event{
				Kind: EventKindDiagnostic,
				Diagnostic: &DiagnosticEvent{
					Path:    failure.Path,
					Depth:   failure.Depth,
					Message: fmt.Sprintf(unreadableDirectoryMessageFormat, describeFailure(failure.Err)),
				},
			})
		default:
			return nil
		}
	})
}

// describeFailure returns the cause of an fs error without its path.
func describeFailure(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
