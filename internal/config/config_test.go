package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://linux.do", cfg.Forum.BaseURL)
	require.Equal(t, int64(3), cfg.Drand.Period)
	require.Equal(t, int64(1692803367), cfg.Drand.GenesisTime)
	require.True(t, cfg.Policy.StrictCount)
	require.Equal(t, 2, cfg.Policy.MinEligibleFloors)
	require.Equal(t, ":5000", cfg.Server.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lottery.toml")
	content := `
verbose = true

[forum]
base_url = "https://forum.example"
timeout = "5s"

[policy]
strict_count = false
allowed_categories = [36, 60]

[server]
port = "8080"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		require.True(t, cfg.Verbose)
		require.Equal(t, "https://forum.example", cfg.Forum.BaseURL)
		require.Equal(t, "https://connect.linux.do", cfg.Forum.ConnectURL)
		require.Equal(t, 5*time.Second, cfg.Forum.Timeout)
		require.False(t, cfg.Policy.StrictCount)
		require.Equal(t, []int{36, 60}, cfg.Policy.AllowedCategories)
		require.Equal(t, "8080", cfg.Server.Port)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("LOTTERY_PORT", "9000")
		t.Setenv("DRAND_PERIOD", "30")
		t.Setenv("ALLOWED_CATEGORIES", "36,60,61,62")

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, "9000", cfg.Server.Port)
		require.Equal(t, int64(30), cfg.Drand.Period)
		require.Equal(t, []int{36, 60, 61, 62}, cfg.Policy.AllowedCategories)
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
	})

	t.Run("invalid period", func(t *testing.T) {
		t.Setenv("DRAND_PERIOD", "0")
		_, err := Load("")
		require.Error(t, err)
	})
}
