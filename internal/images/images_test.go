package images

import (
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/wiredoc/internal/model"
	"github.com/StinkyLord/wiredoc/internal/parser"
)

func newFS(t *testing.T, files ...string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, f, []byte("img"), 0o644))
	}
	return fs
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Molex":             "Molex",
		"43025-0400":        "43025_0400",
		"TE Connectivity":   "TE_Connectivity",
		"a/b\\c":            "a_b_c",
		"PN:12":             "PN_12",
		`<bad>"|?*name`:     "badname",
		"--edge__":          "edge",
		"Alpha Wire / 5154": "Alpha_Wire_5154",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestResolvePartOrder(t *testing.T) {
	fs := newFS(t,
		"/proj/harness/pics/j1.png",
		"/lib/img/Molex_43025_0400.jpg",
		"/lib/img/100-004.png",
		"/lib/img/200_001.svg",
	)
	r := New(WithFilesystem(fs), WithBaseDir("/proj/harness"), WithSearchDirs("/lib/img"))

	// explicit src relative to the base dir
	assert.Equal(t, "/proj/harness/pics/j1.png", r.ResolvePart("Molex", "43025-0400", "100-004", "pics/j1.png"))

	// explicit src that does not exist falls through to manufacturer + mpn
	assert.Equal(t, "/lib/img/Molex_43025_0400.jpg", r.ResolvePart("Molex", "43025-0400", "100-004", "missing.png"))

	// no manufacturer match, so the part number
	assert.Equal(t, "/lib/img/200_001.svg", r.ResolvePart("Alpha", "5154C", "200-001", ""))

	assert.Empty(t, r.ResolvePart("Nobody", "X", "Y", ""))
}

func TestResolvePartSearchDirsAndAbsolute(t *testing.T) {
	fs := newFS(t, "/a/one.png", "/b/two.png", "/abs/three.gif")
	r := New(WithFilesystem(fs), WithSearchDirs("/a", "/b"))

	assert.Equal(t, "/b/two.png", r.ResolvePart("", "", "", "two.png"))
	assert.Equal(t, "/abs/three.gif", r.ResolvePart("", "", "", "/abs/three.gif"))
}

func TestResolvePartLowercaseFallback(t *testing.T) {
	fs := newFS(t, "/img/molex_43025_0400.png")
	r := New(WithFilesystem(fs), WithSearchDirs("/img"))
	assert.Equal(t, "/img/molex_43025_0400.png", r.ResolvePart("Molex", "43025-0400", "", ""))
}

func TestResolvePartIgnoresDirectories(t *testing.T) {
	fs := newFS(t)
	require.NoError(t, fs.MkdirAll("/img/Molex_X.png", 0o755))
	r := New(WithFilesystem(fs), WithSearchDirs("/img"))
	assert.Empty(t, r.ResolvePart("Molex", "X", "", ""))
}

const harness = `
metadata: {id: WH-9, title: Images, revision: A, date: 2024-01-01}
parts:
  MF4: {pn: 100-004, manufacturer: Molex, mpn: 43025-0400, description: Micro-Fit}
connectors:
  J1: {pn: MF4, pincount: 4}
  J2: {pincount: 2, manufacturer: TE, mpn: "1-2"}
cables:
  W1: {colors: [RD], image: {src: w1.png, caption: Loom}}
`

func parse(t *testing.T) *model.HarnessDocument {
	t.Helper()
	doc, err := parser.ParseBytes([]byte(harness))
	require.NoError(t, err)
	return doc
}

func TestResolveDocument(t *testing.T) {
	fs := newFS(t, "/img/Molex_43025_0400.png", "/docs/w1.png")
	r := New(WithFilesystem(fs), WithBaseDir("/docs"), WithSearchDirs("/img"))

	resolved := r.Resolve(parse(t))
	assert.Equal(t, map[string]string{
		"J1":  "/img/Molex_43025_0400.png",
		"W1":  "/docs/w1.png",
		"MF4": "/img/Molex_43025_0400.png",
	}, resolved)
}

func TestMissing(t *testing.T) {
	doc := parse(t)
	r := New(WithFilesystem(newFS(t)), WithSearchDirs("/img"))

	missing := r.Missing(doc, map[string]string{"J1": "/img/x.png"})
	require.Len(t, missing, 2)

	assert.Equal(t, "connector", missing[0].Kind)
	assert.Equal(t, "J2", missing[0].ID)
	assert.Equal(t, "TE_1_2.png", missing[0].SuggestedFilename)

	assert.Equal(t, "cable", missing[1].Kind)
	assert.Equal(t, "W1", missing[1].ID)
	assert.Equal(t, "PN_W1.png", missing[1].SuggestedFilename)
	assert.Contains(t, missing[1].String(), "cable W1")
}

func TestValidatePaths(t *testing.T) {
	fs := newFS(t, "/img/a.png")
	r := New(WithFilesystem(fs))

	errs := r.ValidatePaths(map[string]string{"J1": "/img/a.png", "J2": "/img/b.png"})
	assert.Equal(t, []string{"Image file not found for J2: /img/b.png"}, errs)
}
