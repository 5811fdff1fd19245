// Package buffer implements the buffer-manager collaborator: pinned,
// reference-counted page frames backed by an LRU or MRU replacement policy
// over a set of open disk.File handles.
package buffer

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/malzahar-project/heapfiledb/config"
	"github.com/malzahar-project/heapfiledb/disk"
)

// ReplacementPolicy selects which pinned-out frame is chosen as the next
// eviction victim.
type ReplacementPolicy string

const (
	PolicyLRU ReplacementPolicy = "LRU"
	PolicyMRU ReplacementPolicy = "MRU"
)

// ErrNoFreeFrame is returned when every frame is pinned and none can be
// evicted to satisfy a request.
var ErrNoFreeFrame = errors.New("buffer: no free frame available")

// Frame is one slot of the buffer pool. Callers obtain a Frame via
// ReadPage/AllocPage and must release it with UnpinPage exactly once per
// pin.
type Frame struct {
	file     *disk.File
	pageNo   int32
	Data     []byte
	pinCount int
	dirty    bool
}

func frameKey(f *disk.File, pageNo int32) string {
	return fmt.Sprintf("%p:%d", f, pageNo)
}

// Manager is the heap-file layer's buffer pool: a fixed number of frames
// shared across every open file, replacing pages according to policy.
type Manager struct {
	cfg    *config.DBConfig
	frames []*Frame
	mu     sync.Mutex
	policy ReplacementPolicy
	repl   *list.List
	lookup map[string]*list.Element
}

// NewManager builds a pool of cfg.BMBufferCount empty frames.
func NewManager(cfg *config.DBConfig) *Manager {
	bm := &Manager{
		cfg:    cfg,
		frames: make([]*Frame, cfg.BMBufferCount),
		policy: PolicyLRU,
		repl:   list.New(),
		lookup: make(map[string]*list.Element),
	}
	if cfg.BMPolicy != "" {
		bm.policy = ReplacementPolicy(cfg.BMPolicy)
	}
	for i := range bm.frames {
		bm.frames[i] = &Frame{Data: make([]byte, cfg.PageSize)}
	}
	return bm
}

// touch records a use of el. The replacement list is ordered from least to
// most recently used under both policies; claimFrame picks LRU victims from
// the front and MRU victims from the back.
func (bm *Manager) touch(el *list.Element) {
	bm.repl.MoveToBack(el)
}

// ReadPage pins and returns the frame holding pageNo of file, loading it
// from disk (and possibly evicting another page) if it is not resident.
func (bm *Manager) ReadPage(file *disk.File, pageNo int32) (*Frame, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	key := frameKey(file, pageNo)
	if el, ok := bm.lookup[key]; ok {
		bm.touch(el)
		fr := el.Value.(*Frame)
		fr.pinCount++
		return fr, nil
	}

	fr, err := bm.claimFrame(key)
	if err != nil {
		return nil, err
	}
	data, err := file.ReadPageAt(pageNo)
	if err != nil {
		return nil, err
	}
	copy(fr.Data, data)
	fr.file = file
	fr.pageNo = pageNo
	fr.pinCount = 1
	fr.dirty = false
	el := bm.repl.PushBack(fr)
	bm.lookup[key] = el
	return fr, nil
}

// AllocPage allocates a new page in file, pins it, and returns its frame
// (zero-filled) along with the assigned page number.
func (bm *Manager) AllocPage(file *disk.File) (*Frame, int32, error) {
	pageNo, err := file.AllocatePage()
	if err != nil {
		return nil, 0, err
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	key := frameKey(file, pageNo)
	fr, err := bm.claimFrame(key)
	if err != nil {
		return nil, 0, err
	}
	for i := range fr.Data {
		fr.Data[i] = 0
	}
	fr.file = file
	fr.pageNo = pageNo
	fr.pinCount = 1
	fr.dirty = true
	el := bm.repl.PushBack(fr)
	bm.lookup[key] = el
	return fr, pageNo, nil
}

// claimFrame finds an unused frame, or evicts the current policy victim,
// flushing it first if dirty. Caller holds bm.mu.
func (bm *Manager) claimFrame(key string) (*Frame, error) {
	for _, f := range bm.frames {
		if f.pinCount == 0 && f.file == nil {
			return f, nil
		}
	}

	var victimEl *list.Element
	if bm.policy == PolicyLRU {
		for e := bm.repl.Front(); e != nil; e = e.Next() {
			if e.Value.(*Frame).pinCount == 0 {
				victimEl = e
				break
			}
		}
	} else {
		for e := bm.repl.Back(); e != nil; e = e.Prev() {
			if e.Value.(*Frame).pinCount == 0 {
				victimEl = e
				break
			}
		}
	}
	if victimEl == nil {
		return nil, ErrNoFreeFrame
	}
	victim := victimEl.Value.(*Frame)
	if victim.dirty {
		if err := victim.file.WritePageAt(victim.pageNo, victim.Data); err != nil {
			return nil, err
		}
	}
	delete(bm.lookup, frameKey(victim.file, victim.pageNo))
	bm.repl.Remove(victimEl)
	victim.file = nil
	return victim, nil
}

// UnpinPage releases one pin on the frame holding (file, pageNo). If dirty
// is true the frame is marked dirty and will be flushed before reuse or on
// FlushAll.
func (bm *Manager) UnpinPage(file *disk.File, pageNo int32, dirty bool) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	key := frameKey(file, pageNo)
	el, ok := bm.lookup[key]
	if !ok {
		return errors.Errorf("buffer: page %d of %s not pinned", pageNo, file.Name())
	}
	fr := el.Value.(*Frame)
	if fr.pinCount > 0 {
		fr.pinCount--
	}
	if dirty {
		fr.dirty = true
	}
	return nil
}

// FlushAll writes every dirty frame back to its file and resets the pool to
// empty. It is used on clean shutdown of the heap-file layer.
func (bm *Manager) FlushAll() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, f := range bm.frames {
		if f.file != nil && f.dirty {
			if err := f.file.WritePageAt(f.pageNo, f.Data); err != nil {
				return err
			}
		}
		f.file = nil
		f.pageNo = 0
		f.pinCount = 0
		f.dirty = false
	}
	bm.repl.Init()
	bm.lookup = make(map[string]*list.Element)
	return nil
}

// FlushFile writes back every dirty frame belonging to file without
// evicting it from the pool.
func (bm *Manager) FlushFile(file *disk.File) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, f := range bm.frames {
		if f.file == file && f.dirty {
			if err := f.file.WritePageAt(f.pageNo, f.Data); err != nil {
				return err
			}
			f.dirty = false
		}
	}
	return nil
}
