package disk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malzahar-project/heapfiledb/config"
	"github.com/malzahar-project/heapfiledb/disk"
)

func newTestManager(t *testing.T) (*disk.Manager, *config.DBConfig) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewDBConfigWithParams(dir, 1024, 4)
	return disk.NewManager(cfg), cfg
}

func TestManagerCreateOpenDestroy(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.CreateFile("students"))
	require.ErrorIs(t, m.CreateFile("students"), disk.ErrFileExists)

	f, err := m.OpenFile("students")
	require.NoError(t, err)
	require.Equal(t, "students", f.Name())
	require.Equal(t, int32(0), f.NumPages())
	require.NoError(t, f.Close())

	require.NoError(t, m.DestroyFile("students"))
	require.ErrorIs(t, m.DestroyFile("students"), disk.ErrFileNotFound)

	_, err = m.OpenFile("students")
	require.ErrorIs(t, err, disk.ErrFileNotFound)
}

func TestFilePageLifecycle(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.CreateFile("employees"))
	f, err := m.OpenFile("employees")
	require.NoError(t, err)
	defer f.Close()

	pageNo, err := f.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, int32(0), pageNo)
	require.Equal(t, int32(0), f.FirstPage())
	require.Equal(t, int32(1), f.NumPages())

	data := make([]byte, 1024)
	copy(data, "hello")
	require.NoError(t, f.WritePageAt(pageNo, data))

	got, err := f.ReadPageAt(pageNo)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got[:5]))

	second, err := f.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, int32(1), second)
	require.Equal(t, int32(2), f.NumPages())

	_, err = f.ReadPageAt(99)
	require.Error(t, err)
	require.Error(t, f.WritePageAt(99, data))

	require.NoError(t, f.Sync())
}

func TestFileReopenPreservesPageCount(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.CreateFile("orders"))

	f, err := m.OpenFile("orders")
	require.NoError(t, err)
	_, err = f.AllocatePage()
	require.NoError(t, err)
	_, err = f.AllocatePage()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := m.OpenFile("orders")
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, int32(2), reopened.NumPages())
}
