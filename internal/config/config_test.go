package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := `
output_dir: out
image_dirs: [assets/images, /shared/img]
strict: true
allow_missing_images: true
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	assert.Equal(t, []string{filepath.Join(dir, "assets/images"), "/shared/img"}, cfg.ImageDirs)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.AllowMissingImages)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFileMissingIsError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("strict: [unterminated"), 0o644))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "unmarshal")
}
