package stream

import (
	"github.com/temirov/itree/internal/types"
)

// EventKind identifies what the crawler discovered.
type EventKind string

const (
	// EventKindFiles carries every file of one directory in listing order.
	EventKindFiles      EventKind = "files"
	EventKindDirectory  EventKind = "directory"
	EventKindDiagnostic EventKind = "diagnostic"
)

// Event is a crawler discovery flowing to the orderer.
type Event struct {
	Kind       EventKind
	Files      []types.DiscoveredItem
	Directory  *types.DiscoveredItem
	Diagnostic *DiagnosticEvent
}

// DiagnosticEvent reports a directory whose contents could not be listed.
type DiagnosticEvent struct {
	Path    string
	Depth   int
	Message string
}

// DirectiveKind identifies the payload of a render directive.
type DirectiveKind string

const (
	DirectiveKindFile       DirectiveKind = "file"
	DirectiveKindDirectory  DirectiveKind = "directory"
	DirectiveKindFolded     DirectiveKind = "folded"
	DirectiveKindDiagnostic DirectiveKind = "diagnostic"
)

// RenderDirective is one line of output together with the structural flags needed to draw it.
type RenderDirective struct {
	Kind   DirectiveKind
	Depth  int
	IsLast bool
	IsLeaf bool

	File       *FileEntry
	Directory  *DirectoryEntry
	Folded     *FoldedGroup
	Diagnostic *Diagnostic
}

type FileEntry struct {
	Path string
}

type DirectoryEntry struct {
	Path    string
	Ignored bool
}

// FoldedGroup stands in for Count files of one directory sharing Extension.
type FoldedGroup struct {
	Extension string
	Count     int
}

type Diagnostic struct {
	Path    string
	Message string
}
