package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/itree/internal/types"
)

type TreeEventKind int

const (
	// TreeEventFiles carries every file of one directory, in listing order.
	TreeEventFiles TreeEventKind = iota
	TreeEventDirectory
	// TreeEventUnreadable reports a directory whose listing could not be read.
	TreeEventUnreadable
)

type TreeFailure struct {
	Path  string
	Depth int
	Err   error
}

type TreeEvent struct {
	Kind      TreeEventKind
	Files     []types.DiscoveredItem
	Directory *types.DiscoveredItem
	Failure   *TreeFailure
}

type TreeWalkOptions struct {
	Root      string
	IsIgnored func(directoryPath string) bool
}

type treeWalkContext struct {
	ctx     context.Context
	options TreeWalkOptions
	handler func(TreeEvent) error
}

// WalkTree walks the directory at options.Root depth first. Each directory's files are
// delivered before its subdirectories; ignored directories are reported but not entered.
// A listing failure on the root is returned, failures below it are reported as
// TreeEventUnreadable and the walk continues with the next sibling.
func WalkTree(ctx context.Context, options TreeWalkOptions, handler func(TreeEvent) error) error {
	if handler == nil {
		return fmt.Errorf("tree walk handler is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	walker := treeWalkContext{ctx: ctx, options: options, handler: handler}
	if walker.options.IsIgnored == nil {
		walker.options.IsIgnored = func(string) bool { return false }
	}

	info, statErr := os.Stat(options.Root)
	if statErr != nil {
		return statErr
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", options.Root)
	}

	entries, readErr := os.ReadDir(options.Root)
	if readErr != nil {
		return fmt.Errorf("reading directory %s: %w", options.Root, readErr)
	}
	return walker.walkEntries(options.Root, entries, 0)
}

func (walker *treeWalkContext) walkDirectory(directory types.DiscoveredItem) error {
	if err := walker.ctx.Err(); err != nil {
		return err
	}
	entries, readErr := os.ReadDir(directory.Path)
	if readErr != nil {
		return walker.handler(TreeEvent{
			Kind:    TreeEventUnreadable,
			Failure: &TreeFailure{Path: directory.Path, Depth: directory.Depth, Err: readErr},
		})
	}
	return walker.walkEntries(directory.Path, entries, directory.Depth+1)
}

func (walker *treeWalkContext) walkEntries(path string, entries []os.DirEntry, depth int) error {
	var fileEntries, directoryEntries []os.DirEntry
	for _, entry := range entries {
		if entry.IsDir() {
			directoryEntries = append(directoryEntries, entry)
			continue
		}
		fileEntries = append(fileEntries, entry)
	}
	total := len(fileEntries) + len(directoryEntries)

	if len(fileEntries) > 0 {
		files := make([]types.DiscoveredItem, 0, len(fileEntries))
		for index, entry := range fileEntries {
			files = append(files, types.DiscoveredItem{
				Path:          filepath.Join(path, entry.Name()),
				Depth:         depth,
				IsLastSibling: index+1 == total,
			})
		}
		if err := walker.handler(TreeEvent{Kind: TreeEventFiles, Files: files}); err != nil {
			return err
		}
	}

	for index, entry := range directoryEntries {
		childPath := filepath.Join(path, entry.Name())
		directory := types.DiscoveredItem{
			Path:          childPath,
			IsDirectory:   true,
			Depth:         depth,
			IsLastSibling: len(fileEntries)+index+1 == total,
			IsIgnored:     walker.options.IsIgnored(childPath),
		}
		if err := walker.handler(TreeEvent{Kind: TreeEventDirectory, Directory: &directory}); err != nil {
			return err
		}
		if directory.IsIgnored {
			continue
		}
		if err := walker.walkDirectory(directory); err != nil {
			return err
		}
	}
	return nil
}
