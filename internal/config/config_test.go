package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.FeedTimeout)
	assert.Equal(t, int64(5), cfg.DefaultRoleID)
	assert.Equal(t, int64(1), cfg.CategoryID)
	assert.Equal(t, map[string]int64{"professor": 3}, cfg.RoleTokens)
	assert.Equal(t, "enrolsync.db", cfg.DBPath)
	assert.Equal(t, "enrolsync.db.lock", cfg.LockPath())
	assert.Equal(t, "abort", cfg.FailurePolicy)
	assert.Equal(t, 22, cfg.SFTPPort)
	assert.Equal(t, "/", cfg.SFTPDir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENROLSYNC_FEED_ENDPOINT", "https://feed.example.com/courses.json")
	t.Setenv("ENROLSYNC_FEED_TIMEOUT", "30s")
	t.Setenv("ENROLSYNC_DEFAULT_ROLE_ID", "7")
	t.Setenv("ENROLSYNC_ROLE_TOKENS", "professor:3,editingteacher:4")
	t.Setenv("ENROLSYNC_DB", "/tmp/x.db")
	t.Setenv("SFTP_HOST", "sftp.example.com")
	t.Setenv("SFTP_INSECURE_IGNORE_HOSTKEY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://feed.example.com/courses.json", cfg.FeedEndpoint)
	assert.Equal(t, 30*time.Second, cfg.FeedTimeout)
	assert.Equal(t, int64(7), cfg.DefaultRoleID)
	assert.Equal(t, map[string]int64{"professor": 3, "editingteacher": 4}, cfg.RoleTokens)
	assert.Equal(t, "/tmp/x.db.lock", cfg.LockPath())
	assert.Equal(t, "sftp.example.com", cfg.SFTPHost)
	assert.True(t, cfg.SFTPInsecureIgnoreHostKey)
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("ENROLSYNC_CATEGORY_ID", "not-an-int")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("ENROLSYNC_DEFAULT_ROLE_ID", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENROLSYNC_DEFAULT_ROLE_ID")
}

func TestLoadRoleMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_role_id: 6\ntokens:\n  professor: 3\n  tutor: 4\n"), 0o600))
	t.Setenv("ENROLSYNC_ROLE_MAP_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(6), cfg.DefaultRoleID)
	assert.Equal(t, map[string]int64{"professor": 3, "tutor": 4}, cfg.RoleTokens)
}

func TestLoadRoleMapErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRoleMap(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tokns:\n  professor: 3\n"), 0o600))
	_, err = LoadRoleMap(bad)
	require.Error(t, err, "unknown fields are rejected")
}

func TestLockPathOverride(t *testing.T) {
	cfg := Config{DBPath: "a.db", LockFile: "/run/enrolsync.lock"}
	assert.Equal(t, "/run/enrolsync.lock", cfg.LockPath())
}
