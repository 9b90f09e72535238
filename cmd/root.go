package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/StinkyLord/wiredoc/internal/build"
	"github.com/StinkyLord/wiredoc/internal/config"
	"github.com/StinkyLord/wiredoc/internal/images"
	"github.com/StinkyLord/wiredoc/internal/logging"
	"github.com/StinkyLord/wiredoc/internal/parser"
)

const toolVersion = "1.0.0"

var (
	flagOutputDir          string
	flagLogFile            bool
	flagLogLevel           string
	flagImageDirs          []string
	flagAllowMissingImages bool
	flagStrict             bool
	flagVerbose            bool
	flagConfig             string
)

var rootCmd = &cobra.Command{
	Use:   "wiredoc",
	Short: "Wire harness documentation generator",
	Long: `wiredoc reads harness descriptions written in YAML and produces
factory-ready documentation for each one:
  • bom.tsv           — bill of materials, one line per part number
  • wiring_table.tsv  — one row per wire
  • wireviz.yml       — input for the WireViz diagram renderer
  • bom.cdx.json      — CycloneDX hardware BOM
  • topology.json     — connector tree`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var buildCmd = &cobra.Command{
	Use:   "build <files...>",
	Short: "Build documentation from harness YAML file(s)",
	Long: `Parse, validate and build one or more harness files. Each harness is
written to <output-dir>/<metadata.id>/.

Examples:
  wiredoc build harness.yml
  wiredoc build "harnesses/*.harness.yml" --output-dir dist
  wiredoc build harness.yml --log-file --log-level info`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

var lintCmd = &cobra.Command{
	Use:   "lint <files...>",
	Short: "Validate harness YAML file(s) without building",
	Long: `Parse and validate harness files and print errors and warnings.

Examples:
  wiredoc lint harness.yml
  wiredoc lint harness.yml --strict`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

var imagesCmd = &cobra.Command{
	Use:   "images <file>",
	Short: "Resolve part images for a harness",
	Long: `Look up an image for every connector and cable and list the ones
still missing, with the file name that would be picked up.

Examples:
  wiredoc images harness.yml --image-dir assets/images`,
	Args: cobra.ExactArgs(1),
	RunE: runImages,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wiredoc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wiredoc v%s\n", toolVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a config file (default ./"+config.FileName+")")
	rootCmd.PersistentFlags().StringArrayVar(&flagImageDirs, "image-dir", nil,
		"Directory to search for part images (repeatable, default assets/images and images)")
	rootCmd.PersistentFlags().BoolVar(&flagStrict, "strict", false, "Treat warnings as errors")

	buildCmd.Flags().StringVarP(&flagOutputDir, "output-dir", "o", "build", "Output directory for generated files")
	buildCmd.Flags().BoolVar(&flagLogFile, "log-file", false, "Write a detailed log to <output-dir>/<harness-id>/build.log")
	buildCmd.Flags().StringVar(&flagLogLevel, "log-level", "debug", "Log level for the build log: debug, info, warn, error")
	buildCmd.Flags().BoolVar(&flagAllowMissingImages, "allow-missing-images", false, "Continue the build even if part images are missing")

	rootCmd.AddCommand(buildCmd, lintCmd, imagesCmd, versionCmd)
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := 1
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		if err.Error() != "" {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
}

// settings merges the config file with flags. Flags given on the command
// line win.
func settings(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") || cfg.OutputDir == "" {
		cfg.OutputDir = flagOutputDir
	}
	if flags.Changed("image-dir") {
		cfg.ImageDirs = flagImageDirs
	}
	if flags.Changed("strict") {
		cfg.Strict = flagStrict
	}
	if flags.Changed("allow-missing-images") {
		cfg.AllowMissingImages = flagAllowMissingImages
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	} else if cfg.Log.Level == "" {
		cfg.Log.Level = "error"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	l, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("cannot create logger: %w", err)
	}
	return l, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	files, err := build.ExpandInputs(args)
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "wiredoc v%s\n", toolVersion)
	fmt.Fprintf(out, "Building %d file(s) into %s\n", len(files), cfg.OutputDir)

	b := build.New(build.Options{
		OutputDir:          cfg.OutputDir,
		ImageDirs:          cfg.ImageDirs,
		Strict:             cfg.Strict,
		AllowMissingImages: cfg.AllowMissingImages,
		LogFile:            flagLogFile,
		LogLevel:           flagLogLevel,
		ToolVersion:        toolVersion,
		Logger:             logger,
	})

	var failed, warned int
	for _, r := range b.Run(files) {
		printResult(out, r)
		switch {
		case r.Err != nil:
			failed++
		case len(r.Warnings) > 0 || len(r.Missing) > 0:
			warned++
		}
	}

	switch {
	case failed > 0:
		return &exitError{code: 1, msg: fmt.Sprintf("BUILD FAILED: %d of %d harness(es) failed", failed, len(files))}
	case warned > 0:
		return &exitError{code: 2, msg: "BUILD COMPLETE (with warnings)"}
	}
	fmt.Fprintln(out, "BUILD COMPLETE")
	return nil
}

func printResult(w io.Writer, r *build.Result) {
	fmt.Fprintf(w, "\n▸ %s\n", r.Path)
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	for _, m := range r.Missing {
		fmt.Fprintf(w, "  missing image: %s\n", m)
	}
	if r.Err != nil {
		fmt.Fprintf(w, "  error: %v\n", r.Err)
		return
	}
	for _, name := range r.Outputs {
		fmt.Fprintf(w, "  created %s\n", filepath.Join(r.BundleDir, name))
	}
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	files, err := build.ExpandInputs(args)
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	b := build.New(build.Options{Strict: cfg.Strict, Logger: logger})

	var errCount, warnCount int
	for _, r := range b.CheckAll(files) {
		switch {
		case r.Err != nil && !errors.Is(r.Err, build.ErrStrict):
			errCount++
			fmt.Fprintf(out, "✗ %s\n  %v\n", r.Path, r.Err)
		case len(r.Warnings) == 0:
			fmt.Fprintf(out, "✓ %s\n", r.Path)
		default:
			fmt.Fprintf(out, "! %s\n", r.Path)
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(out, "  warning: %s\n", warning)
		}
		warnCount += len(r.Warnings)
	}

	switch {
	case errCount > 0:
		return &exitError{code: 1, msg: fmt.Sprintf("Validation failed: %d error(s), %d warning(s)", errCount, warnCount)}
	case warnCount > 0 && cfg.Strict:
		return &exitError{code: 1, msg: fmt.Sprintf("Strict mode: %d warning(s) treated as errors", warnCount)}
	case warnCount > 0:
		fmt.Fprintf(out, "Validation passed with %d warning(s)\n", warnCount)
	default:
		fmt.Fprintln(out, "Validation passed")
	}
	return nil
}

func runImages(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	path := args[0]
	doc, err := parser.ParseFile(path, parser.WithLogger(logger.Logger))
	if err != nil {
		return err
	}

	opts := []images.Option{images.WithBaseDir(filepath.Dir(path)), images.WithLogger(logger.Logger)}
	if len(cfg.ImageDirs) > 0 {
		opts = append(opts, images.WithSearchDirs(cfg.ImageDirs...))
	}
	r := images.New(opts...)
	resolved := r.Resolve(doc)
	missing := r.Missing(doc, resolved)

	out := cmd.OutOrStdout()
	for _, id := range doc.ComponentIDs()["connectors"] {
		if p, ok := resolved[id]; ok {
			fmt.Fprintf(out, "%s\t%s\n", id, p)
		}
	}
	for _, id := range doc.ComponentIDs()["cables"] {
		if p, ok := resolved[id]; ok {
			fmt.Fprintf(out, "%s\t%s\n", id, p)
		}
	}
	for _, m := range missing {
		fmt.Fprintf(out, "%s\tmissing\t%s\n", m.ID, m.SuggestedFilename)
	}
	for _, msg := range r.ValidatePaths(resolved) {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}

	if len(missing) > 0 && cfg.Strict {
		return &exitError{code: 1, msg: fmt.Sprintf("%d component(s) have no image", len(missing))}
	}
	return nil
}
