package output_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/temirov/itree/internal/config"
	"github.com/temirov/itree/internal/output"
	"github.com/temirov/itree/internal/services/stream"
	"github.com/temirov/itree/internal/types"
)

func plainTheme() *config.Theme {
	return &config.Theme{
		Icons: config.IconSet{
			Directories: config.DirectoryIconSet{Default: "dir"},
			Files: config.FileIconSet{
				Default:    "file",
				Extensions: map[string]string{"log": "log"},
			},
		},
		Colors: config.ColorSet{
			Directories: config.DirectoryColorSet{Default: "0000ff", Ignored: "#808080"},
			Files:       config.FileColorSet{Default: "ffffff", Extensions: map[string]string{"log": "not-a-color"}},
			Diagnostic:  "ff0000",
		},
		Glyphs: map[string]string{
			"dir": "D", "file": "F", "log": "L",
			config.GlyphPipeVertical: "|", config.GlyphPipeTee: "+", config.GlyphPipeEnd: "`", config.GlyphPipeHorizontal: "--",
			config.GlyphWarning: "!",
		},
	}
}

func renderDirectives(t *testing.T, colorMode string, directives ...stream.RenderDirective) string {
	t.Helper()
	return renderWithTheme(t, plainTheme(), colorMode, directives...)
}

func renderWithTheme(t *testing.T, theme *config.Theme, colorMode string, directives ...stream.RenderDirective) string {
	t.Helper()
	var buffer bytes.Buffer
	renderer, err := output.NewTreeRenderer(&buffer, output.TreeRendererOptions{Root: "/work/project", Theme: theme, ColorMode: colorMode})
	if err != nil {
		t.Fatalf("NewTreeRenderer error: %v", err)
	}
	for _, directive := range directives {
		if handleErr := renderer.Handle(directive); handleErr != nil {
			t.Fatalf("Handle error: %v", handleErr)
		}
	}
	if flushErr := renderer.Flush(); flushErr != nil {
		t.Fatalf("Flush error: %v", flushErr)
	}
	return buffer.String()
}

func TestTreeRendererDrawsConnectorsAndPayloads(t *testing.T) {
	t.Parallel()

	rendered := renderDirectives(t, types.ColorModeNever,
		stream.RenderDirective{Kind: stream.DirectiveKindFile, Depth: 0, IsLeaf: true, File: &stream.FileEntry{Path: "/work/project/a.txt"}},
		stream.RenderDirective{Kind: stream.DirectiveKindDirectory, Depth: 0, IsLeaf: true, Directory: &stream.DirectoryEntry{Path: "/work/project/node_modules", Ignored: true}},
		stream.RenderDirective{Kind: stream.DirectiveKindDirectory, Depth: 0, IsLast: true, Directory: &stream.DirectoryEntry{Path: "/work/project/src"}},
		stream.RenderDirective{Kind: stream.DirectiveKindFolded, Depth: 1, IsLeaf: true, Folded: &stream.FoldedGroup{Extension: "log", Count: 150}},
		stream.RenderDirective{Kind: stream.DirectiveKindDiagnostic, Depth: 2, IsLast: true, IsLeaf: true, Diagnostic: &stream.Diagnostic{Message: "cannot read directory: permission denied"}},
	)

	expected := strings.Join([]string{
		"D project",
		"+-- F a.txt",
		"+-- D node_modules/...",
		"+-- D src",
		"| +-- L 150 log files...",
		"| | `-- ! cannot read directory: permission denied",
		"",
	}, "\n")
	if rendered != expected {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", rendered, expected)
	}
}

func TestTreeRendererPrintsHeaderForEmptyTree(t *testing.T) {
	t.Parallel()

	if rendered := renderDirectives(t, types.ColorModeNever); rendered != "D project\n" {
		t.Fatalf("unexpected output %q", rendered)
	}
}

func TestTreeRendererColorModes(t *testing.T) {
	directive := stream.RenderDirective{Kind: stream.DirectiveKindFile, IsLast: true, IsLeaf: true, File: &stream.FileEntry{Path: "/work/project/main.go"}}
	testCases := []struct {
		name       string
		colorMode  string
		expectANSI bool
	}{
		{name: "never", colorMode: types.ColorModeNever, expectANSI: false},
		{name: "always", colorMode: types.ColorModeAlways, expectANSI: true},
		{name: "auto_on_buffer", colorMode: types.ColorModeAuto, expectANSI: false},
	}
	t.Setenv("CLICOLOR_FORCE", "")
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rendered := renderDirectives(t, testCase.colorMode, directive)
			if strings.Contains(rendered, "\x1b[") != testCase.expectANSI {
				t.Fatalf("expected ANSI=%t in %q", testCase.expectANSI, rendered)
			}
			if !strings.Contains(rendered, "F main.go") {
				t.Fatalf("missing payload in %q", rendered)
			}
		})
	}
}

func TestTreeRendererFallsBackToCategoryDefaultColor(t *testing.T) {
	t.Parallel()

	const (
		directoryDefaultSequence = "38;2;0;0;255"
		fileDefaultSequence      = "38;2;255;255;255"
	)
	theme := plainTheme()
	theme.Colors.Directories.WellKnown = map[string]string{"src": "zzzzzz"}
	theme.Colors.Directories.Ignored = "not-a-color"

	testCases := []struct {
		name      string
		directive stream.RenderDirective
		expected  string
		rejected  string
	}{
		{
			name:      "malformed_directory_color",
			directive: stream.RenderDirective{Kind: stream.DirectiveKindDirectory, IsLast: true, Directory: &stream.DirectoryEntry{Path: "/work/project/src"}},
			expected:  directoryDefaultSequence,
			rejected:  fileDefaultSequence,
		},
		{
			name:      "malformed_ignored_color",
			directive: stream.RenderDirective{Kind: stream.DirectiveKindDirectory, IsLast: true, IsLeaf: true, Directory: &stream.DirectoryEntry{Path: "/work/project/vendor", Ignored: true}},
			expected:  directoryDefaultSequence,
			rejected:  fileDefaultSequence,
		},
		{
			name:      "malformed_extension_color",
			directive: stream.RenderDirective{Kind: stream.DirectiveKindFolded, IsLast: true, IsLeaf: true, Folded: &stream.FoldedGroup{Extension: "log", Count: 20}},
			expected:  fileDefaultSequence,
			rejected:  directoryDefaultSequence,
		},
	}
	for _, testCase := range testCases {
		rendered := renderWithTheme(t, theme, types.ColorModeAlways, testCase.directive)
		payloadLine := strings.SplitN(rendered, "\n", 2)[1]
		if !strings.Contains(payloadLine, testCase.expected) {
			t.Errorf("%s: expected %q in %q", testCase.name, testCase.expected, payloadLine)
		}
		if strings.Contains(payloadLine, testCase.rejected) {
			t.Errorf("%s: unexpected %q in %q", testCase.name, testCase.rejected, payloadLine)
		}
	}
}

func TestTreeRendererRejectsEmptyPayload(t *testing.T) {
	t.Parallel()

	renderer, err := output.NewTreeRenderer(&bytes.Buffer{}, output.TreeRendererOptions{Theme: plainTheme(), ColorMode: types.ColorModeNever})
	if err != nil {
		t.Fatalf("NewTreeRenderer error: %v", err)
	}
	if handleErr := renderer.Handle(stream.RenderDirective{Kind: stream.DirectiveKindFile}); handleErr == nil {
		t.Fatalf("expected error for directive without payload")
	}
}

func TestColorProfile(t *testing.T) {
	t.Parallel()

	if profile := output.ColorProfile(types.ColorModeNever, &bytes.Buffer{}); profile != termenv.Ascii {
		t.Fatalf("expected ascii profile, got %v", profile)
	}
	if profile := output.ColorProfile(types.ColorModeAlways, &bytes.Buffer{}); profile != termenv.TrueColor {
		t.Fatalf("expected true color profile, got %v", profile)
	}
}

func TestNormalizeHexColor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
		valid    bool
	}{
		{input: "FF8800", expected: "#ff8800", valid: true},
		{input: "#00add8", expected: "#00add8", valid: true},
		{input: "abc", expected: "#abc", valid: true},
		{input: "not-a-color", valid: false},
		{input: "", valid: false},
		{input: "12345", valid: false},
	}
	for _, testCase := range testCases {
		actual, valid := output.NormalizeHexColor(testCase.input)
		if valid != testCase.valid || actual != testCase.expected {
			t.Errorf("NormalizeHexColor(%q) = (%q, %t), want (%q, %t)", testCase.input, actual, valid, testCase.expected, testCase.valid)
		}
	}
}

type recordingRenderer struct {
	handled  int
	flushed  bool
	flushErr error
}

func (renderer *recordingRenderer) Handle(stream.RenderDirective) error {
	renderer.handled++
	return nil
}

func (renderer *recordingRenderer) Flush() error {
	renderer.flushed = true
	return renderer.flushErr
}

func TestFanoutRendererForwardsToAll(t *testing.T) {
	t.Parallel()

	flushFailure := errors.New("flush failed")
	first := &recordingRenderer{flushErr: flushFailure}
	second := &recordingRenderer{}
	fanout := output.NewFanoutRenderer(first, nil, second)

	directive := stream.RenderDirective{Kind: stream.DirectiveKindFile, File: &stream.FileEntry{Path: "a"}}
	for index := 0; index < 3; index++ {
		if err := fanout.Handle(directive); err != nil {
			t.Fatalf("Handle error: %v", err)
		}
	}
	if err := fanout.Flush(); !errors.Is(err, flushFailure) {
		t.Fatalf("expected flush failure, got %v", err)
	}
	if first.handled != 3 || second.handled != 3 {
		t.Fatalf("expected both renderers to see every directive, got %d and %d", first.handled, second.handled)
	}
	if !second.flushed {
		t.Fatalf("expected second renderer to be flushed after first failed")
	}
}
