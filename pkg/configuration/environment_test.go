package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PLANORA_TEST_ONLY=1\n"), 0o644))

	n, err := LoadEnv([]string{envFile, filepath.Join(dir, ".env.missing")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "1", os.Getenv("PLANORA_TEST_ONLY"))
	t.Cleanup(func() { _ = os.Unsetenv("PLANORA_TEST_ONLY") })
}

func TestLoadEnv_NoFiles(t *testing.T) {
	n, err := LoadEnv([]string{filepath.Join(t.TempDir(), ".env")})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestConfiguration_Load(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_PATH", filepath.Join(dir, "app.log"))
	t.Setenv("DB_NAME", "planora_test")
	t.Setenv("PORT", "4400")

	c := &Configuration{}
	require.NoError(t, c.load(nil))
	t.Cleanup(c.Unload)

	assert.Equal(t, "planora_test", c.Database.Name)
	assert.Contains(t, c.Database.Opts, "dbname=planora_test")
	assert.Equal(t, "localhost:4400", c.SocketAddress)
	assert.Equal(t, 500, c.Hierarchy.PropagationBatchSize)
	assert.NotNil(t, c.Logger())
}

func TestHierarchyOptions_Validate(t *testing.T) {
	opts := HierarchyOptions{PropagationBatchSize: 0}
	assert.Error(t, opts.Validate())
	opts.PropagationBatchSize = 100
	assert.NoError(t, opts.Validate())
}
