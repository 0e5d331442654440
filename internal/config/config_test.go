package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "idempiere", cfg.Database.Name)
	assert.Equal(t, "adempiere", cfg.Database.User)
	assert.Equal(t, 10000, cfg.Patch.MaxElementSpan)
	assert.False(t, cfg.Sync.SkipCoreEntities)
	assert.Equal(t, 0, cfg.Sync.ClientID)
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packsync.yaml")
	content := `database:
  host: db.internal
  password: secret
sync:
  skip_core_entities: true
  client_id: 1000000
patch:
  max_element_span: 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 5432, cfg.Database.Port) // default fills the gap
	assert.True(t, cfg.Sync.SkipCoreEntities)
	assert.Equal(t, 1000000, cfg.Sync.ClientID)
	assert.Equal(t, 500, cfg.Patch.MaxElementSpan)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  port: 70000\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t,
		"host=localhost port=5432 dbname=idempiere user=adempiere password=adempiere sslmode=disable",
		cfg.Database.DSN())
}
