package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	opts := Default()

	assert.Equal(t, ".", opts.Root)
	assert.False(t, opts.CheckExternal)
	assert.True(t, opts.FailOnBrokenLinks)
	assert.Equal(t, []string{"**/*.html"}, opts.Include)
	assert.Empty(t, opts.Exclude)
	assert.Equal(t, 5*time.Second, opts.Timeout())
	assert.Equal(t, 2*time.Second, opts.DebounceDelay())
	assert.Equal(t, time.Hour, opts.CheckInterval())
	assert.False(t, opts.Events.Enabled)
	assert.Equal(t, "linkcheck.broken", opts.Events.Subject)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	opts, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)
}

func TestLoad_FileLayersOverDefaults(t *testing.T) {
	t.Setenv("SITE_BASE", "https://docs.example.com")

	path := filepath.Join(t.TempDir(), "linkcheck.yaml")
	content := `
root: public
check_external: true
external_timeout: 10s
base: ${SITE_BASE}
exclude:
  - "mailto:"
history:
  path: runs.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	opts, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "public", opts.Root)
	assert.True(t, opts.CheckExternal)
	assert.Equal(t, 10*time.Second, opts.Timeout())
	assert.Equal(t, "https://docs.example.com", opts.Base)
	assert.Equal(t, []string{"mailto:"}, opts.Exclude)
	assert.Equal(t, "runs.db", opts.History.Path)

	// Untouched fields keep their defaults.
	assert.True(t, opts.FailOnBrokenLinks)
	assert.Equal(t, []string{"**/*.html"}, opts.Include)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	opts := Default()
	require.NoError(t, opts.Validate())

	opts.Include = nil
	assert.Error(t, opts.Validate())

	opts = Default()
	opts.ExternalTimeout = "fast"
	err := opts.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "external_timeout")
}

func TestTimeoutFallsBackOnBadValue(t *testing.T) {
	opts := Default()
	opts.ExternalTimeout = "not-a-duration"
	assert.Equal(t, 5*time.Second, opts.Timeout())

	opts.ExternalTimeout = "-1s"
	assert.Equal(t, 5*time.Second, opts.Timeout())
}
