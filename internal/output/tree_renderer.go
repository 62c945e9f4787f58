package output

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/muesli/termenv"

	"github.com/temirov/itree/internal/config"
	"github.com/temirov/itree/internal/services/stream"
	"github.com/temirov/itree/internal/types"
)

const (
	defaultStyleCacheSize  = 128
	ignoredDirectorySuffix = "/..."
	foldedGroupFormat      = "%s %d %s files..."
	hexColorPrefix         = "#"
)

type TreeRendererOptions struct {
	// Root is printed as the header line; an empty root prints no header.
	Root           string
	Theme          *config.Theme
	ColorMode      string
	StyleCacheSize int
}

type treeRenderer struct {
	writer        *bufio.Writer
	theme         *config.Theme
	styles        *lipgloss.Renderer
	styleCache    *lru.Cache[string, lipgloss.Style]
	root          string
	headerWritten bool
}

// NewTreeRenderer returns a renderer drawing box connectors, icons, and colors to out.
func NewTreeRenderer(out io.Writer, options TreeRendererOptions) (StreamRenderer, error) {
	if out == nil {
		return nil, fmt.Errorf("tree renderer output is nil")
	}
	theme := options.Theme
	if theme == nil {
		theme = config.DefaultTheme()
	}
	cacheSize := options.StyleCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultStyleCacheSize
	}
	styleCache, cacheErr := lru.New[string, lipgloss.Style](cacheSize)
	if cacheErr != nil {
		return nil, fmt.Errorf("create style cache: %w", cacheErr)
	}
	styles := lipgloss.NewRenderer(out)
	styles.SetColorProfile(ColorProfile(options.ColorMode, out))

	return &treeRenderer{
		writer:     bufio.NewWriter(out),
		theme:      theme,
		styles:     styles,
		styleCache: styleCache,
		root:       options.Root,
	}, nil
}

// ColorProfile maps a color mode onto the terminal profile used for styling. Auto mode
// inspects out and the environment (NO_COLOR, CLICOLOR_FORCE).
func ColorProfile(colorMode string, out io.Writer) termenv.Profile {
	switch colorMode {
	case types.ColorModeNever:
		return termenv.Ascii
	case types.ColorModeAlways:
		return termenv.TrueColor
	default:
		return termenv.NewOutput(out).EnvColorProfile()
	}
}

func (renderer *treeRenderer) Handle(directive stream.RenderDirective) error {
	if err := renderer.writeHeader(); err != nil {
		return err
	}
	payload, payloadErr := renderer.payload(directive)
	if payloadErr != nil {
		return payloadErr
	}

	var line strings.Builder
	vertical := renderer.theme.Glyph(config.GlyphPipeVertical)
	for level := 0; level < directive.Depth; level++ {
		line.WriteString(vertical)
		line.WriteString(" ")
	}
	if directive.IsLast && directive.IsLeaf {
		line.WriteString(renderer.theme.Glyph(config.GlyphPipeEnd))
	} else {
		line.WriteString(renderer.theme.Glyph(config.GlyphPipeTee))
	}
	line.WriteString(renderer.theme.Glyph(config.GlyphPipeHorizontal))
	line.WriteString(" ")
	line.WriteString(payload)
	line.WriteString("\n")

	_, writeErr := renderer.writer.WriteString(line.String())
	return writeErr
}

func (renderer *treeRenderer) Flush() error {
	if err := renderer.writeHeader(); err != nil {
		return err
	}
	return renderer.writer.Flush()
}

func (renderer *treeRenderer) writeHeader() error {
	if renderer.headerWritten {
		return nil
	}
	renderer.headerWritten = true
	if renderer.root == "" {
		return nil
	}
	name := filepath.Base(renderer.root)
	header := renderer.paint(renderer.theme.DirectoryColor(name), renderer.theme.Colors.Directories.Default, renderer.theme.DirectoryGlyph(name)+" "+name)
	_, err := renderer.writer.WriteString(header + "\n")
	return err
}

func (renderer *treeRenderer) payload(directive stream.RenderDirective) (string, error) {
	theme := renderer.theme
	switch directive.Kind {
	case stream.DirectiveKindFile:
		if directive.File != nil {
			name := filepath.Base(directive.File.Path)
			return renderer.paint(theme.FileColor(name), theme.Colors.Files.Default, theme.FileGlyph(name)+" "+name), nil
		}
	case stream.DirectiveKindDirectory:
		if directive.Directory != nil {
			name := filepath.Base(directive.Directory.Path)
			text := theme.DirectoryGlyph(name) + " " + name
			if directive.Directory.Ignored {
				return renderer.paint(theme.IgnoredDirectoryColor(), theme.Colors.Directories.Default, text+ignoredDirectorySuffix), nil
			}
			return renderer.paint(theme.DirectoryColor(name), theme.Colors.Directories.Default, text), nil
		}
	case stream.DirectiveKindFolded:
		if directive.Folded != nil {
			extension := directive.Folded.Extension
			text := fmt.Sprintf(foldedGroupFormat, theme.ExtensionGlyph(extension), directive.Folded.Count, extension)
			return renderer.paint(theme.ExtensionColor(extension), theme.Colors.Files.Default, text), nil
		}
	case stream.DirectiveKindDiagnostic:
		if directive.Diagnostic != nil {
			text := theme.Glyph(config.GlyphWarning) + " " + directive.Diagnostic.Message
			return renderer.paint(theme.DiagnosticColor(), theme.Colors.Files.Default, text), nil
		}
	}
	return "", fmt.Errorf("render directive %q has no payload", directive.Kind)
}

// paint renders text in color, falling back to the category default color and then to
// no color when a value is malformed.
func (renderer *treeRenderer) paint(color string, categoryDefault string, text string) string {
	hex, ok := NormalizeHexColor(color)
	if !ok {
		hex, _ = NormalizeHexColor(categoryDefault)
	}
	return renderer.style(hex).Render(text)
}

// style returns the foreground style for a normalized hex color; an empty color yields an
// unstyled renderer style.
func (renderer *treeRenderer) style(hex string) lipgloss.Style {
	if cached, ok := renderer.styleCache.Get(hex); ok {
		return cached
	}
	style := renderer.styles.NewStyle()
	if hex != "" {
		style = style.Foreground(lipgloss.Color(hex))
	}
	renderer.styleCache.Add(hex, style)
	return style
}

// NormalizeHexColor accepts RRGGBB or RGB with an optional leading '#'.
func NormalizeHexColor(value string) (string, bool) {
	digits := strings.TrimPrefix(strings.TrimSpace(value), hexColorPrefix)
	if len(digits) != 6 && len(digits) != 3 {
		return "", false
	}
	if _, err := strconv.ParseUint(digits, 16, 32); err != nil {
		return "", false
	}
	return hexColorPrefix + strings.ToLower(digits), true
}
