// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/itree/internal/config"
	"github.com/temirov/itree/internal/output"
	"github.com/temirov/itree/internal/services/clipboard"
	"github.com/temirov/itree/internal/services/stream"
	"github.com/temirov/itree/internal/types"
	"github.com/temirov/itree/internal/utils"
)

const (
	unfoldFlagName       = "unfold"
	unfoldFlagShorthand  = "u"
	filterFlagName       = "filter"
	filterFlagShorthand  = "f"
	foldFlagName         = "fold"
	exclusionFlagName    = "exclude"
	exclusionShorthand   = "e"
	gitignoreFlagName    = "gitignore"
	colorFlagName        = "color"
	copyFlagName         = "copy"
	configFlagName       = "config"
	themeDirFlagName     = "theme-dir"
	versionFlagName      = "version"
	versionTemplate      = "itree version: %s\n"
	defaultPath          = "."
	rootUse              = "itree [path]"
	rootShortDescription = "display a directory tree with icons and colors"
	rootLongDescription  = `itree renders a directory as a tree, decorating every entry with an icon and a color.
Directories listed in ignored_dirs are shown collapsed, large groups of files sharing an
extension are folded into a single line, and --filter limits the files shown to a glob.`
	rootUsageExample = `  # Render the current directory
  itree

  # Show only Go files without folding
  itree --filter '*.go' --unfold ./internal

  # Copy an uncolored tree to the clipboard
  itree --copy --color never .`

	unfoldFlagDescription    = "show every file instead of folding large extension groups"
	filterFlagDescription    = "only show files whose name matches the glob"
	foldFlagDescription      = "fold extension groups with at least this many files"
	exclusionFlagDescription = "additional directory name or path suffix to collapse"
	gitignoreFlagDescription = "also collapse directories matched by the root .gitignore"
	colorFlagDescription     = "color output: auto, always, or never"
	copyFlagDescription      = "also copy the uncolored tree to the clipboard"
	configFlagDescription    = "settings file used instead of ./.itree/settings.json"
	themeDirFlagDescription  = "directory holding icons.json, colors.json, and glyphs.json"
	versionFlagDescription   = "display application version"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	// errorPathMissingFormat reports a missing path.
	errorPathMissingFormat = "path '%s' does not exist"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorNotDirectoryFormat reports a path that is not a directory.
	errorNotDirectoryFormat = "path '%s' is not a directory"
)

type applicationDependencies struct {
	logger *zap.Logger
	copier clipboard.Copier
}

type treeOptions struct {
	unfold          bool
	filter          string
	foldThreshold   int
	exclusions      []string
	useGitignore    bool
	colorMode       string
	copyToClipboard bool
	configPath      string
	themeDirectory  string
}

// Execute runs the itree application until it completes or receives an interrupt.
func Execute(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCommand := createRootCommand(applicationDependencies{logger: logger, copier: clipboard.NewService()})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies applicationDependencies) *cobra.Command {
	if dependencies.logger == nil {
		dependencies.logger = zap.NewNop()
	}
	var options treeOptions
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			inputPath := defaultPath
			if len(arguments) == 1 {
				inputPath = arguments[0]
			}
			return runTree(command.Context(), command, dependencies, options, inputPath)
		},
	}

	flags := rootCommand.Flags()
	registerBooleanFlag(flags, &options.unfold, unfoldFlagName, unfoldFlagShorthand, false, unfoldFlagDescription)
	flags.StringVarP(&options.filter, filterFlagName, filterFlagShorthand, "", filterFlagDescription)
	flags.IntVar(&options.foldThreshold, foldFlagName, 0, foldFlagDescription)
	flags.StringArrayVarP(&options.exclusions, exclusionFlagName, exclusionShorthand, nil, exclusionFlagDescription)
	registerBooleanFlag(flags, &options.useGitignore, gitignoreFlagName, "", false, gitignoreFlagDescription)
	flags.StringVar(&options.colorMode, colorFlagName, types.ColorModeAuto, colorFlagDescription)
	registerBooleanFlag(flags, &options.copyToClipboard, copyFlagName, "", false, copyFlagDescription)
	flags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	flags.StringVar(&options.themeDirectory, themeDirFlagName, "", themeDirFlagDescription)
	registerBooleanFlag(flags, &showVersion, versionFlagName, "", false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func runTree(ctx context.Context, command *cobra.Command, dependencies applicationDependencies, options treeOptions, inputPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	validatedPath, resolveErr := resolveDirectory(inputPath)
	if resolveErr != nil {
		return resolveErr
	}
	configuration, configurationErr := loadConfiguration(command.Flags(), options, validatedPath.AbsolutePath)
	if configurationErr != nil {
		return configurationErr
	}

	rendererOptions := output.TreeRendererOptions{
		Root:      validatedPath.AbsolutePath,
		Theme:     configuration.Theme,
		ColorMode: configuration.ColorMode,
	}
	terminalRenderer, rendererErr := output.NewTreeRenderer(command.OutOrStdout(), rendererOptions)
	if rendererErr != nil {
		return rendererErr
	}
	renderer := terminalRenderer
	var clipboardBuffer *bytes.Buffer
	if options.copyToClipboard {
		clipboardBuffer = &bytes.Buffer{}
		plainRenderer, plainErr := newPlainRenderer(clipboardBuffer, rendererOptions)
		if plainErr != nil {
			return plainErr
		}
		renderer = output.NewFanoutRenderer(terminalRenderer, plainRenderer)
	}

	runErr := stream.Run(ctx, stream.Options{
		Root:          validatedPath.AbsolutePath,
		Configuration: configuration,
		Logger:        dependencies.logger,
	}, renderer.Handle)
	flushErr := renderer.Flush()
	if runErr != nil {
		return runErr
	}
	if flushErr != nil {
		return flushErr
	}

	if clipboardBuffer != nil && dependencies.copier != nil {
		return dependencies.copier.Copy(clipboardBuffer.String())
	}
	return nil
}

func newPlainRenderer(out io.Writer, options output.TreeRendererOptions) (output.StreamRenderer, error) {
	options.ColorMode = types.ColorModeNever
	return output.NewTreeRenderer(out, options)
}

// loadConfiguration merges file settings with the flags the user actually set.
func loadConfiguration(flags *pflag.FlagSet, options treeOptions, rootDirectory string) (*config.Configuration, error) {
	workingDirectory, workingDirectoryErr := os.Getwd()
	if workingDirectoryErr != nil {
		return nil, fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryErr)
	}
	settings, settingsErr := config.LoadSettings(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if settingsErr != nil {
		return nil, settingsErr
	}
	settings = settings.Merge(flagOverrides(flags, options))
	if len(options.exclusions) > 0 {
		combined := append(append([]string{}, settings.IgnoredDirectories...), options.exclusions...)
		settings.IgnoredDirectories = utils.DeduplicatePatterns(combined)
	}

	theme, themeErr := config.LoadTheme(options.themeDirectory)
	if themeErr != nil {
		return nil, themeErr
	}
	return config.NewConfiguration(rootDirectory, settings, theme)
}

func flagOverrides(flags *pflag.FlagSet, options treeOptions) config.Settings {
	var overrides config.Settings
	if flags == nil {
		return overrides
	}
	if flags.Changed(unfoldFlagName) {
		unfold := options.unfold
		overrides.Unfold = &unfold
	}
	if flags.Changed(filterFlagName) {
		filter := options.filter
		overrides.Filter = &filter
	}
	if flags.Changed(foldFlagName) {
		threshold := options.foldThreshold
		overrides.FoldThreshold = &threshold
	}
	if flags.Changed(colorFlagName) {
		overrides.Color = options.colorMode
	}
	if flags.Changed(gitignoreFlagName) {
		useGitignore := options.useGitignore
		overrides.UseGitignore = &useGitignore
	}
	return overrides
}

// resolveDirectory converts the input path to a clean absolute path with symlinks evaluated
// and checks that it is a directory.
func resolveDirectory(inputPath string) (types.ValidatedPath, error) {
	absolutePath, absolutePathError := filepath.Abs(inputPath)
	if absolutePathError != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
	}
	resolvedPath, evaluationError := filepath.EvalSymlinks(filepath.Clean(absolutePath))
	if evaluationError != nil {
		if os.IsNotExist(evaluationError) {
			return types.ValidatedPath{}, fmt.Errorf(errorPathMissingFormat, inputPath)
		}
		return types.ValidatedPath{}, fmt.Errorf(errorStatFormat, inputPath, evaluationError)
	}
	info, fileStatusError := os.Stat(resolvedPath)
	if fileStatusError != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
	}
	if !info.IsDir() {
		return types.ValidatedPath{}, fmt.Errorf(errorNotDirectoryFormat, inputPath)
	}
	return types.ValidatedPath{AbsolutePath: resolvedPath, IsDir: true}, nil
}
