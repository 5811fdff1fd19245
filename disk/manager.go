// Package disk implements the file/disk-manager collaborator described by
// the heap-file layer's external interface: named files living under a
// configured data directory, each a flat sequence of fixed-size pages.
package disk

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/malzahar-project/heapfiledb/config"
)

// ErrFileExists is returned by CreateFile when the backing file is already
// present on disk.
var ErrFileExists = errors.New("disk: file exists")

// ErrFileNotFound is returned by OpenFile/DestroyFile when the backing file
// is absent.
var ErrFileNotFound = errors.New("disk: file not found")

// Manager creates, opens, closes, and destroys named heap files. It holds no
// page contents itself — that is the buffer manager's job — it only knows
// how to turn a name into bytes on disk.
type Manager struct {
	cfg *config.DBConfig
	mu  sync.Mutex
}

// NewManager constructs a Manager rooted at cfg.DBPath. The directory is
// created lazily by the first CreateFile call.
func NewManager(cfg *config.DBConfig) *Manager {
	return &Manager{cfg: cfg}
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.cfg.DBPath, name+".heap")
}

// CreateFile creates an empty backing file for name. It fails with
// ErrFileExists if the file is already present.
func (m *Manager) CreateFile(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.path(name)
	if _, err := os.Stat(p); err == nil {
		return ErrFileExists
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat %s", p)
	}
	if err := os.MkdirAll(m.cfg.DBPath, 0o755); err != nil {
		return errors.Wrapf(err, "mkdir %s", m.cfg.DBPath)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create %s", p)
	}
	return f.Close()
}

// DestroyFile removes the backing file for name.
func (m *Manager) DestroyFile(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.path(name)
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		return errors.Wrapf(err, "remove %s", p)
	}
	return nil
}

// OpenFile opens an existing named file for page-level I/O.
func (m *Manager) OpenFile(name string) (*File, error) {
	p := m.path(name)
	f, err := os.OpenFile(p, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, errors.Wrapf(err, "open %s", p)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "stat %s", p)
	}
	pageSize := int64(m.cfg.PageSize)
	pageCount := int32(0)
	if pageSize > 0 {
		pageCount = int32(info.Size() / pageSize)
	}
	return &File{
		name:     name,
		f:        f,
		pageSize: m.cfg.PageSize,
		numPages: pageCount,
	}, nil
}

// File is a handle to one named heap file's pages.
type File struct {
	name     string
	f        *os.File
	pageSize int
	mu       sync.Mutex
	numPages int32
}

// Name returns the name this file was opened/created with.
func (fl *File) Name() string { return fl.name }

// FirstPage returns the page number of the file's first page. By
// convention (see §4.6) this is always page 0: the header page is always
// the first page ever allocated in a freshly created file.
func (fl *File) FirstPage() int32 { return 0 }

// NumPages returns the number of pages currently allocated in the file.
func (fl *File) NumPages() int32 {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.numPages
}

// AllocatePage extends the file by one zero-filled page and returns its
// 0-based page number.
func (fl *File) AllocatePage() (int32, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	pageNo := fl.numPages
	off := int64(pageNo) * int64(fl.pageSize)
	zero := make([]byte, fl.pageSize)
	if _, err := fl.f.WriteAt(zero, off); err != nil {
		return 0, errors.Wrapf(err, "allocate page %d", pageNo)
	}
	fl.numPages++
	return pageNo, nil
}

// ReadPageAt reads exactly one page worth of bytes at pageNo.
func (fl *File) ReadPageAt(pageNo int32) ([]byte, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if pageNo < 0 || pageNo >= fl.numPages {
		return nil, errors.Errorf("disk: page %d out of range (numPages=%d)", pageNo, fl.numPages)
	}
	buf := make([]byte, fl.pageSize)
	off := int64(pageNo) * int64(fl.pageSize)
	if _, err := fl.f.ReadAt(buf, off); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "read page %d", pageNo)
	}
	return buf, nil
}

// WritePageAt writes exactly one page worth of bytes at pageNo.
func (fl *File) WritePageAt(pageNo int32, data []byte) error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if pageNo < 0 || pageNo >= fl.numPages {
		return errors.Errorf("disk: page %d out of range (numPages=%d)", pageNo, fl.numPages)
	}
	if len(data) > fl.pageSize {
		return errors.Errorf("disk: data too large for page (%d > %d)", len(data), fl.pageSize)
	}
	off := int64(pageNo) * int64(fl.pageSize)
	buf := data
	if len(data) < fl.pageSize {
		buf = make([]byte, fl.pageSize)
		copy(buf, data)
	}
	if _, err := fl.f.WriteAt(buf, off); err != nil {
		return errors.Wrapf(err, "write page %d", pageNo)
	}
	return nil
}

// Sync flushes the file's contents to stable storage.
func (fl *File) Sync() error {
	return errors.Wrap(fl.f.Sync(), "sync")
}

// Close closes the underlying OS file handle.
func (fl *File) Close() error {
	return errors.Wrap(fl.f.Close(), "close")
}
