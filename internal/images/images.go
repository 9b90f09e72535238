// Package images finds pictures for connectors, cables and parts.
//
// A component's image is looked up in this order:
//
//  1. the explicit src from the document, relative to the base dir, then to
//     each search dir, then as an absolute path
//  2. <Manufacturer>_<MPN>.<ext> in the search dirs
//  3. <PN>.<ext> in the search dirs
//
// where ext is one of png, jpg, jpeg, svg or gif.
package images

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/StinkyLord/wiredoc/internal/model"
)

// Extensions are tried in this order.
var Extensions = []string{".png", ".jpg", ".jpeg", ".svg", ".gif"}

// DefaultSearchDirs is used when no search dirs are configured.
var DefaultSearchDirs = []string{"assets/images", "images"}

// Resolver looks up image files on a billy filesystem.
type Resolver struct {
	fs         billy.Filesystem
	baseDir    string
	searchDirs []string
	logger     *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFilesystem swaps the host filesystem for fs. Paths are used as given.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(r *Resolver) { r.fs = fs }
}

// WithBaseDir sets the directory explicit relative srcs are resolved
// against first, usually the directory holding the harness file.
func WithBaseDir(dir string) Option {
	return func(r *Resolver) { r.baseDir = dir }
}

// WithSearchDirs replaces DefaultSearchDirs.
func WithSearchDirs(dirs ...string) Option {
	return func(r *Resolver) { r.searchDirs = dirs }
}

// WithLogger sets the logger used to report lookups.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New returns a Resolver. Without WithFilesystem it reads the host
// filesystem, with relative dirs taken from the working directory.
func New(opts ...Option) *Resolver {
	r := &Resolver{searchDirs: DefaultSearchDirs, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = osfs.New("/")
		r.baseDir = absolute(r.baseDir)
		dirs := make([]string, 0, len(r.searchDirs))
		for _, d := range r.searchDirs {
			dirs = append(dirs, absolute(d))
		}
		r.searchDirs = dirs
	}
	return r
}

func absolute(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (r *Resolver) exists(path string) bool {
	if path == "" {
		return false
	}
	fi, err := r.fs.Stat(path)
	return err == nil && !fi.IsDir()
}

// ResolvePart returns the image path for one component, or "" when none is
// found.
func (r *Resolver) ResolvePart(manufacturer, mpn, pn, explicit string) string {
	if explicit != "" {
		if !filepath.IsAbs(explicit) && r.baseDir != "" {
			if p := filepath.Join(r.baseDir, explicit); r.exists(p) {
				return p
			}
		}
		for _, dir := range r.searchDirs {
			if p := filepath.Join(dir, explicit); r.exists(p) {
				return p
			}
		}
		if filepath.IsAbs(explicit) && r.exists(explicit) {
			return explicit
		}
	}

	if manufacturer != "" && mpn != "" {
		if p := r.find(SanitizeFilename(manufacturer) + "_" + SanitizeFilename(mpn)); p != "" {
			return p
		}
	}
	if pn != "" {
		if p := r.find(SanitizeFilename(pn)); p != "" {
			return p
		}
	}
	return ""
}

// find tries every extension for name in each search dir, falling back to
// the lowercased name.
func (r *Resolver) find(name string) string {
	lower := strings.ToLower(name)
	for _, dir := range r.searchDirs {
		for _, ext := range Extensions {
			if p := filepath.Join(dir, name+ext); r.exists(p) {
				return p
			}
			if lower != name {
				if p := filepath.Join(dir, lower+ext); r.exists(p) {
					return p
				}
			}
		}
	}
	return ""
}

func explicitSrc(img *model.ImageSpec) string {
	if img == nil {
		return ""
	}
	return img.Src
}

// Resolve maps connector, cable and part ids to image paths. Components
// without an image are left out. A part never replaces a connector or
// cable entry of the same id.
func (r *Resolver) Resolve(doc *model.HarnessDocument) map[string]string {
	resolved := make(map[string]string)

	for _, c := range doc.Connectors {
		if p := r.ResolvePart(c.Manufacturer, c.MPN, c.PrimaryPN, explicitSrc(c.Image)); p != "" {
			resolved[c.ID] = p
			r.logger.Debug("resolved image", zap.String("connector", c.ID), zap.String("path", p))
		} else {
			r.logger.Debug("no image found", zap.String("connector", c.ID))
		}
	}
	for _, c := range doc.Cables {
		if p := r.ResolvePart(c.Manufacturer, c.MPN, c.PrimaryPN, explicitSrc(c.Image)); p != "" {
			resolved[c.ID] = p
			r.logger.Debug("resolved image", zap.String("cable", c.ID), zap.String("path", p))
		} else {
			r.logger.Debug("no image found", zap.String("cable", c.ID))
		}
	}
	for _, part := range doc.Parts {
		if _, taken := resolved[part.ID]; taken {
			continue
		}
		if p := r.ResolvePart(part.Manufacturer, part.MPN, part.PrimaryPN, explicitSrc(part.Image)); p != "" {
			resolved[part.ID] = p
			r.logger.Debug("resolved image", zap.String("part", part.ID), zap.String("path", p))
		}
	}

	r.logger.Info("resolved images", zap.Int("count", len(resolved)))
	return resolved
}

// Missing describes a connector or cable with no image.
type Missing struct {
	Kind              string // connector or cable
	ID                string
	Manufacturer      string
	MPN               string
	PN                string
	SuggestedFilename string
}

// Missing lists the connectors and cables absent from resolved, in
// document order.
func (r *Resolver) Missing(doc *model.HarnessDocument, resolved map[string]string) []Missing {
	var out []Missing
	for _, c := range doc.Connectors {
		if _, ok := resolved[c.ID]; !ok {
			out = append(out, newMissing("connector", c.ID, c.Manufacturer, c.MPN, c.PrimaryPN))
		}
	}
	for _, c := range doc.Cables {
		if _, ok := resolved[c.ID]; !ok {
			out = append(out, newMissing("cable", c.ID, c.Manufacturer, c.MPN, c.PrimaryPN))
		}
	}
	return out
}

// newMissing suggests <Manufacturer>_<MPN>.png, or <PN>.png when the
// component has no MPN.
func newMissing(kind, id, manufacturer, mpn, pn string) Missing {
	suggested := SanitizeFilename(manufacturer) + "_" + SanitizeFilename(mpn) + ".png"
	if mpn == "" && pn != "" {
		suggested = SanitizeFilename(pn) + ".png"
	}
	return Missing{
		Kind:              kind,
		ID:                id,
		Manufacturer:      manufacturer,
		MPN:               mpn,
		PN:                pn,
		SuggestedFilename: suggested,
	}
}

func (m Missing) String() string {
	return fmt.Sprintf("%s %s (%s %s): add %s", m.Kind, m.ID, m.Manufacturer, m.MPN, m.SuggestedFilename)
}

// ValidatePaths reports every resolved path that does not exist.
func (r *Resolver) ValidatePaths(resolved map[string]string) []string {
	var errs []string
	for _, id := range sortedKeys(resolved) {
		if path := resolved[id]; !r.exists(path) {
			errs = append(errs, fmt.Sprintf("Image file not found for %s: %s", id, path))
		}
	}
	return errs
}

var (
	unsafeChars = regexp.MustCompile(`[<>"|?*]`)
	separators  = regexp.MustCompile(`[-_]+`)
)

// SanitizeFilename turns a manufacturer or part number into a file name
// stem. Path separators and colons become hyphens, spaces become
// underscores, shell-unsafe characters are dropped and runs of hyphens or
// underscores collapse to a single underscore.
func SanitizeFilename(name string) string {
	s := strings.NewReplacer("/", "-", `\`, "-", " ", "_", ":", "-").Replace(name)
	s = unsafeChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "_")
	return strings.Trim(s, "_-")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
