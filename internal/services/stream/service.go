// Package stream runs the tree decoration pipeline: a crawler and an orderer connected by
// bounded channels, feeding render directives to a consumer on the calling goroutine.
package stream

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/itree/internal/config"
)

// DefaultChannelCapacity bounds both pipeline channels when Options.ChannelCapacity is unset.
const DefaultChannelCapacity = 256

type Options struct {
	Root            string
	Configuration   *config.Configuration
	Logger          *zap.Logger
	ChannelCapacity int
}

// Run streams the tree rooted at options.Root and hands each directive to consume in order.
// A consumer error cancels the crawler and the orderer and is returned once both have exited.
func Run(ctx context.Context, options Options, consume func(RenderDirective) error) error {
	if consume == nil {
		return fmt.Errorf("stream: directive consumer is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	capacity := options.ChannelCapacity
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, streamCtx := errgroup.WithContext(runCtx)
	events := make(chan Event, capacity)
	directives := make(chan RenderDirective, capacity)

	group.Go(func() error {
		defer close(events)
		return Crawl(streamCtx, options.Root, options.Configuration, logger, events)
	})
	group.Go(func() error {
		defer close(directives)
		return Order(streamCtx, options.Configuration, logger, events, directives)
	})

	var consumeErr error
	for directive := range directives {
		if consumeErr != nil {
			continue
		}
		if err := consume(directive); err != nil {
			consumeErr = err
			cancel()
		}
	}

	groupErr := group.Wait()
	if consumeErr != nil {
		return consumeErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if groupErr != nil && !errors.Is(groupErr, context.Canceled) {
		return groupErr
	}
	return nil
}
