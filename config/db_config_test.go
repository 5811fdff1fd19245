package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malzahar-project/heapfiledb/config"
)

func TestNewDBConfig(t *testing.T) {
	c := config.NewDBConfig("/tmp/DB")
	require.Equal(t, "/tmp/DB", c.DBPath)
	require.Equal(t, 4096, c.PageSize)
	require.Equal(t, "LRU", c.BMPolicy)
}

func TestLoadDBConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	content := "dbpath: ../DB\npagesize: 8192\nbm_buffercount: 4\nbm_policy: MRU\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := config.LoadDBConfig(path)
	require.NoError(t, err)
	require.Equal(t, "../DB", c.DBPath)
	require.Equal(t, 8192, c.PageSize)
	require.Equal(t, 4, c.BMBufferCount)
	require.Equal(t, "MRU", c.BMPolicy)
}

func TestLoadDBConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	content := `{"dbpath": "./data", "pagesize": 16384, "bm_buffercount": 3, "bm_policy": "LRU"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := config.LoadDBConfig(path)
	require.NoError(t, err)
	require.Equal(t, "./data", c.DBPath)
	require.Equal(t, 16384, c.PageSize)
	require.Equal(t, 3, c.BMBufferCount)
	require.Equal(t, "LRU", c.BMPolicy)
}

func TestLoadDBConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dbpath: ./data\n"), 0o644))

	c, err := config.LoadDBConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4096, c.PageSize)
	require.Equal(t, 16, c.BMBufferCount)
	require.Equal(t, "LRU", c.BMPolicy)
}

func TestLoadDBConfigMissingFile(t *testing.T) {
	_, err := config.LoadDBConfig("does-not-exist.yaml")
	require.Error(t, err)
}

func TestLoadDBConfigNoDbPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nodbp.yaml")
	require.NoError(t, os.WriteFile(p, []byte("pagesize: 4096\n"), 0o644))

	_, err := config.LoadDBConfig(p)
	require.Error(t, err)
}
