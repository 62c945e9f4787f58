package commands_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/temirov/itree/internal/commands"
	"github.com/temirov/itree/internal/types"
)

const ignoredDirName = "node_modules"

type walkRecord struct {
	name          string
	isDirectory   bool
	depth         int
	isLastSibling bool
	isIgnored     bool
}

func writeFixture(testingHandle *testing.T, rootDirectory string, relativePaths ...string) {
	testingHandle.Helper()
	for _, relativePath := range relativePaths {
		fullPath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		if strings.HasSuffix(relativePath, "/") {
			if err := os.MkdirAll(fullPath, 0o755); err != nil {
				testingHandle.Fatalf("mkdir %s: %v", fullPath, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			testingHandle.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
		}
		if err := os.WriteFile(fullPath, []byte("x"), 0o644); err != nil {
			testingHandle.Fatalf("write %s: %v", fullPath, err)
		}
	}
}

func recordItem(item types.DiscoveredItem) walkRecord {
	return walkRecord{
		name:          filepath.Base(item.Path),
		isDirectory:   item.IsDirectory,
		depth:         item.Depth,
		isLastSibling: item.IsLastSibling,
		isIgnored:     item.IsIgnored,
	}
}

// TestWalkTreeOrdersFilesBeforeDirectories verifies listing order, depth and last-sibling flags.
func TestWalkTreeOrdersFilesBeforeDirectories(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory,
		"b.txt", "a.txt", "node_modules/pkg/index.js", "src/main.rs", "src/lib/mod.rs",
	)

	var records []walkRecord
	var batchSizes []int
	options := commands.TreeWalkOptions{
		Root: rootDirectory,
		IsIgnored: func(directoryPath string) bool {
			return filepath.Base(directoryPath) == ignoredDirName
		},
	}
	walkErr := commands.WalkTree(context.Background(), options, func(event commands.TreeEvent) error {
		switch event.Kind {
		case commands.TreeEventFiles:
			batchSizes = append(batchSizes, len(event.Files))
			for _, file := range event.Files {
				records = append(records, recordItem(file))
			}
		case commands.TreeEventDirectory:
			records = append(records, recordItem(*event.Directory))
		case commands.TreeEventUnreadable:
			testingHandle.Fatalf("unexpected unreadable event for %s", event.Failure.Path)
		}
		return nil
	})
	if walkErr != nil {
		testingHandle.Fatalf("WalkTree error: %v", walkErr)
	}

	expected := []walkRecord{
		{name: "a.txt", depth: 0},
		{name: "b.txt", depth: 0},
		{name: "node_modules", isDirectory: true, depth: 0, isIgnored: true},
		{name: "src", isDirectory: true, depth: 0, isLastSibling: true},
		{name: "main.rs", depth: 1},
		{name: "lib", isDirectory: true, depth: 1, isLastSibling: true},
		{name: "mod.rs", depth: 2, isLastSibling: true},
	}
	if len(records) != len(expected) {
		testingHandle.Fatalf("expected %d records, got %d: %+v", len(expected), len(records), records)
	}
	for index := range expected {
		if records[index] != expected[index] {
			testingHandle.Fatalf("record %d: expected %+v, got %+v", index, expected[index], records[index])
		}
	}
	if len(batchSizes) != 3 || batchSizes[0] != 2 || batchSizes[1] != 1 || batchSizes[2] != 1 {
		testingHandle.Fatalf("unexpected file batches: %v", batchSizes)
	}
}

// TestWalkTreeRootFailures verifies that problems with the root are returned as errors.
func TestWalkTreeRootFailures(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, "plain.txt")

	testCases := []struct {
		name string
		root string
	}{
		{name: "missing", root: filepath.Join(rootDirectory, "absent")},
		{name: "regular_file", root: filepath.Join(rootDirectory, "plain.txt")},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			err := commands.WalkTree(context.Background(), commands.TreeWalkOptions{Root: testCase.root}, func(commands.TreeEvent) error {
				return nil
			})
			if err == nil {
				testingHandle.Fatalf("expected error for %s", testCase.root)
			}
		})
	}
}

// TestWalkTreeReportsUnreadableSubdirectory verifies that traversal continues past a listing failure.
func TestWalkTreeReportsUnreadableSubdirectory(testingHandle *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		testingHandle.Skip("directory permissions are not enforced")
	}
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, "locked/secret.txt", "open/visible.txt")
	lockedPath := filepath.Join(rootDirectory, "locked")
	if err := os.Chmod(lockedPath, 0o000); err != nil {
		testingHandle.Fatalf("chmod: %v", err)
	}
	testingHandle.Cleanup(func() { _ = os.Chmod(lockedPath, 0o755) })

	var failures []*commands.TreeFailure
	var sawVisible bool
	walkErr := commands.WalkTree(context.Background(), commands.TreeWalkOptions{Root: rootDirectory}, func(event commands.TreeEvent) error {
		switch event.Kind {
		case commands.TreeEventUnreadable:
			failures = append(failures, event.Failure)
		case commands.TreeEventFiles:
			for _, file := range event.Files {
				if filepath.Base(file.Path) == "visible.txt" {
					sawVisible = true
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		testingHandle.Fatalf("WalkTree error: %v", walkErr)
	}
	if len(failures) != 1 || failures[0].Path != lockedPath || failures[0].Depth != 0 {
		testingHandle.Fatalf("unexpected failures: %+v", failures)
	}
	if !sawVisible {
		testingHandle.Fatalf("expected sibling directory to be walked")
	}
}

// TestWalkTreeStopsOnHandlerError verifies that handler errors end the walk.
func TestWalkTreeStopsOnHandlerError(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, "one/a.txt", "two/b.txt")
	stopErr := errors.New("stop")
	calls := 0
	err := commands.WalkTree(context.Background(), commands.TreeWalkOptions{Root: rootDirectory}, func(commands.TreeEvent) error {
		calls++
		return stopErr
	})
	if !errors.Is(err, stopErr) {
		testingHandle.Fatalf("expected handler error, got %v", err)
	}
	if calls != 1 {
		testingHandle.Fatalf("expected a single handler call, got %d", calls)
	}
}

// TestWalkTreeHonorsCancellation verifies that a cancelled context stops directory expansion.
func TestWalkTreeHonorsCancellation(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, "one/a.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := commands.WalkTree(ctx, commands.TreeWalkOptions{Root: rootDirectory}, func(commands.TreeEvent) error {
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		testingHandle.Fatalf("expected cancellation, got %v", err)
	}
}
