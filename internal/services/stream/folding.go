package stream

import (
	"path/filepath"

	"github.com/temirov/itree/internal/config"
	"github.com/temirov/itree/internal/types"
)

// foldFiles converts the files of one directory into directives. When folding is enabled,
// every extension with at least threshold members collapses into one FoldedGroup placed at
// the position of its last member. Files without an extension are never folded.
func foldFiles(files []types.DiscoveredItem, threshold int, enabled bool) []RenderDirective {
	extensions := make([]string, len(files))
	counts := make(map[string]int)
	lastMember := make(map[string]int)
	for index, file := range files {
		extension := config.FileExtension(filepath.Base(file.Path))
		extensions[index] = extension
		if extension == "" {
			continue
		}
		counts[extension]++
		lastMember[extension] = index
	}

	directives := make([]RenderDirective, 0, len(files))
	for index, file := range files {
		extension := extensions[index]
		if enabled && extension != "" && counts[extension] >= threshold {
			if lastMember[extension] != index {
				continue
			}
			directives = append(directives, RenderDirective{
				Kind:   DirectiveKindFolded,
				Depth:  file.Depth,
				IsLast: file.IsLastSibling,
				IsLeaf: true,
				Folded: &FoldedGroup{Extension: extension, Count: counts[extension]},
			})
			continue
		}
		directives = append(directives, RenderDirective{
			Kind:   DirectiveKindFile,
			Depth:  file.Depth,
			IsLast: file.IsLastSibling,
			IsLeaf: true,
			File:   &FileEntry{Path: file.Path},
		})
	}
	return directives
}
