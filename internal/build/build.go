// Package build orchestrates parsing, validation, image lookup and output
// generation for one or more harness files.
package build

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/StinkyLord/wiredoc/internal/bom"
	"github.com/StinkyLord/wiredoc/internal/images"
	"github.com/StinkyLord/wiredoc/internal/logging"
	"github.com/StinkyLord/wiredoc/internal/model"
	"github.com/StinkyLord/wiredoc/internal/output"
	"github.com/StinkyLord/wiredoc/internal/parser"
	"github.com/StinkyLord/wiredoc/internal/wiring"
)

var (
	// ErrStrict is returned when warnings are found in strict mode.
	ErrStrict = errors.New("warnings treated as errors")

	// ErrMissingImages is returned when components have no image and
	// missing images are not allowed.
	ErrMissingImages = errors.New("missing images")

	// ErrNoInputs is returned by ExpandInputs when nothing matches.
	ErrNoInputs = errors.New("no matching files found")
)

// Output file names inside a bundle.
const (
	BOMFile      = "bom.tsv"
	WiringFile   = "wiring_table.tsv"
	WireVizFile  = "wireviz.yml"
	CycloneDX    = "bom.cdx.json"
	TopologyFile = "topology.json"
	LogFile      = "build.log"
)

// Options controls a Builder.
type Options struct {
	OutputDir string

	// ImageDirs replaces images.DefaultSearchDirs when set.
	ImageDirs []string

	// Strict turns ValidateComplete warnings into failures.
	Strict bool

	// AllowMissingImages lets a build finish when components have no image.
	AllowMissingImages bool

	// LogFile writes a build.log into each bundle at LogLevel.
	LogFile  bool
	LogLevel string

	ToolVersion string
	Logger      *logging.Logger
}

// Result is the outcome for one harness file.
type Result struct {
	Path      string
	Document  *model.HarnessDocument
	BundleDir string
	Warnings  []string
	Missing   []images.Missing
	Outputs   []string
	Err       error
}

// Builder runs the pipeline over harness files.
type Builder struct {
	opts Options
}

// New creates a Builder.
func New(opts Options) *Builder {
	if opts.OutputDir == "" {
		opts.OutputDir = "build"
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "debug"
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Builder{opts: opts}
}

// ExpandInputs expands glob patterns. Plain paths are kept as given and
// must exist.
func ExpandInputs(patterns []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, p := range patterns {
		if strings.ContainsAny(p, "*?[") {
			matches, err := filepath.Glob(p)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", p, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("file not found: %s", p)
		}
		add(p)
	}
	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	return files, nil
}

// Run builds every file concurrently and returns results sorted by path.
// Files sharing a metadata id are given distinct bundle directories before
// anything is written; see bundleDirs.
func (b *Builder) Run(files []string) []*Result {
	files = unique(files)
	checked := b.each(files, b.Check)
	dirs := b.bundleDirs(checked)
	byPath := make(map[string]*Result, len(checked))
	for _, r := range checked {
		byPath[r.Path] = r
	}
	return b.each(files, func(path string) *Result {
		res := byPath[path]
		if res.Document == nil {
			return res
		}
		return b.assemble(res, dirs[path])
	})
}

// CheckAll parses and validates every file concurrently without writing
// anything.
func (b *Builder) CheckAll(files []string) []*Result {
	return b.each(files, b.Check)
}

func (b *Builder) each(files []string, fn func(string) *Result) []*Result {
	resultCh := make(chan *Result, len(files))
	var wg sync.WaitGroup

	for _, f := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			resultCh <- fn(path)
		}(f)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]*Result, 0, len(files))
	for r := range resultCh {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

// Check parses path and collects ValidateComplete warnings. Warnings are
// returned, not logged.
func (b *Builder) Check(path string) *Result {
	res := &Result{Path: path}
	log := b.opts.Logger.WithField("file", path)

	doc, err := parser.ParseFile(path, parser.WithLogger(log.Logger))
	if err != nil {
		res.Err = err
		return res
	}
	res.Document = doc
	res.Warnings = doc.ValidateComplete()
	if b.opts.Strict && len(res.Warnings) > 0 {
		res.Err = fmt.Errorf("%w: %d warning(s)", ErrStrict, len(res.Warnings))
	}
	return res
}

// Build runs the full pipeline for path and writes its bundle into
// <OutputDir>/<metadata.id>/.
func (b *Builder) Build(path string) *Result {
	res := b.Check(path)
	if res.Document == nil {
		return res
	}
	return b.assemble(res, filepath.Join(b.opts.OutputDir, bundleName(res.Document.Metadata.ID)))
}

// assemble resolves images and writes the bundle for a checked result.
func (b *Builder) assemble(res *Result, bundleDir string) *Result {
	path := res.Path
	doc := res.Document
	log := b.opts.Logger.WithFields(map[string]interface{}{"file": path, "harness": doc.Metadata.ID})

	res.BundleDir = bundleDir
	if err := os.MkdirAll(res.BundleDir, 0o755); err != nil {
		res.Err = fmt.Errorf("cannot create output directory: %w", err)
		return res
	}

	if b.opts.LogFile {
		fileLog, closeLog, err := log.Tee(filepath.Join(res.BundleDir, LogFile), b.opts.LogLevel)
		if err != nil {
			res.Err = fmt.Errorf("cannot open build log: %w", err)
			return res
		}
		defer closeLog()
		log = fileLog
		res.Outputs = append(res.Outputs, LogFile)
		log.Info("building harness", zap.String("output", res.BundleDir))
	}
	for _, w := range res.Warnings {
		log.Warn("validation warning", zap.String("warning", w))
	}

	if res.Err != nil {
		log.Error("build failed", zap.Error(res.Err))
		return res
	}

	resolverOpts := []images.Option{
		images.WithBaseDir(filepath.Dir(path)),
		images.WithLogger(log.Logger),
	}
	if len(b.opts.ImageDirs) > 0 {
		resolverOpts = append(resolverOpts, images.WithSearchDirs(b.opts.ImageDirs...))
	}
	resolver := images.New(resolverOpts...)
	resolved := resolver.Resolve(doc)
	res.Missing = resolver.Missing(doc, resolved)
	for _, m := range res.Missing {
		log.Warn("image not found", zap.String("component", m.ID), zap.String("suggested", m.SuggestedFilename))
	}
	if len(res.Missing) > 0 && !b.opts.AllowMissingImages {
		ids := make([]string, 0, len(res.Missing))
		for _, m := range res.Missing {
			ids = append(ids, m.ID)
		}
		res.Err = fmt.Errorf("%w: %s", ErrMissingImages, strings.Join(ids, ", "))
		log.Error("build failed", zap.Error(res.Err))
		return res
	}

	if err := b.write(res, resolved, log); err != nil {
		res.Err = err
		log.Error("build failed", zap.Error(err))
		return res
	}
	log.Info("build complete", zap.Strings("outputs", res.Outputs))
	return res
}

func (b *Builder) write(res *Result, resolved map[string]string, log *logging.Logger) error {
	doc := res.Document
	items := bom.Extract(doc)
	for _, it := range items {
		if it.MixedUnits {
			log.Warn("bom line sums mixed units", zap.String("pn", it.PartNumber), zap.String("unit", it.Unit))
		}
	}
	steps := []struct {
		name  string
		write func(path string) error
	}{
		{BOMFile, func(p string) error { return output.WriteBOMFile(p, items) }},
		{WiringFile, func(p string) error { return output.WriteWiringTableFile(p, wiring.Extract(doc)) }},
		{WireVizFile, func(p string) error { return output.WriteWireViz(doc, resolved, p) }},
		{CycloneDX, func(p string) error { return output.WriteCycloneDX(doc, p, b.opts.ToolVersion) }},
		{TopologyFile, func(p string) error { return output.WriteTopology(model.BuildTopology(doc), p) }},
	}
	for _, s := range steps {
		p := filepath.Join(res.BundleDir, s.name)
		if err := s.write(p); err != nil {
			return fmt.Errorf("failed to write %s: %w", s.name, err)
		}
		log.Debug("wrote output", zap.String("path", p))
		res.Outputs = append(res.Outputs, s.name)
	}
	return nil
}

// bundleDirs assigns every parsed result a bundle directory, in path order.
// The first file with a given id gets <id>; later files with the same id
// fall back to their file stem, numbered if that is taken too.
func (b *Builder) bundleDirs(results []*Result) map[string]string {
	dirs := make(map[string]string, len(results))
	taken := map[string]bool{}
	for _, r := range results {
		if r.Document == nil {
			continue
		}
		name := bundleName(r.Document.Metadata.ID)
		if taken[name] {
			stem := bundleName(fileStem(r.Path))
			name = stem
			for n := 2; taken[name]; n++ {
				name = fmt.Sprintf("%s-%d", stem, n)
			}
			b.opts.Logger.Warn("duplicate harness id, using file name for bundle",
				zap.String("file", r.Path),
				zap.String("harness", r.Document.Metadata.ID),
				zap.String("bundle", name))
		}
		taken[name] = true
		dirs[r.Path] = filepath.Join(b.opts.OutputDir, name)
	}
	return dirs
}

func unique(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := files[:0:0]
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// fileStem strips the directory, the extension and a ".harness" suffix.
func fileStem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, ".harness")
}

// bundleName keeps a harness id from escaping the output directory.
func bundleName(id string) string {
	name := strings.NewReplacer("/", "-", `\`, "-").Replace(id)
	if name == "" || name == "." || name == ".." {
		return "harness"
	}
	return name
}
