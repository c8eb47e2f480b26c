package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "jwt:\n  access_secret: secret\n"))
	require.NoError(t, err)
	assert.Equal(t, 93, c.Program.WindowDays)
	assert.Equal(t, 90, c.Program.PassDays)
	assert.False(t, c.Program.CountPending)
	assert.Equal(t, "postgres", c.Database.Driver)
	assert.Equal(t, "Asia/Shanghai", c.App.Timezone)
}

func TestLoadRejectsInvalidProgram(t *testing.T) {
	_, err := Load(writeConfig(t, "jwt:\n  access_secret: secret\nprogram:\n  pass_days: 0\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "jwt:\n  access_secret: secret\nprogram:\n  window_days: 80\n"))
	assert.Error(t, err)

	t.Setenv(EnvPrefix+"_PROGRAM_PASS_DAYS", "0")
	_, err = Load(writeConfig(t, "jwt:\n  access_secret: secret\n"))
	assert.Error(t, err)
}

func TestLoadRequiresSecret(t *testing.T) {
	_, err := Load(writeConfig(t, "mode: release\n"))
	assert.Error(t, err)
}
