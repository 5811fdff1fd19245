package heapfile

import (
	"github.com/malzahar-project/heapfiledb/buffer"
	"github.com/malzahar-project/heapfiledb/disk"
	"github.com/malzahar-project/heapfiledb/slotpage"
)

// cursor is the at-most-one pinned data page shared by a HeapFile and the
// Scan/Insert views built on top of it. reposition, release and markDirty
// change it; page() reads the pinned page. The views also set rec directly,
// and Insert's page spill installs a newly allocated page in its fields.
type cursor struct {
	frame  *buffer.Frame
	pageNo int32
	dirty  bool
	rec    RID
}

func newCursor() cursor {
	return cursor{pageNo: -1, rec: NULL_RID}
}

func (c *cursor) present() bool {
	return c.frame != nil
}

func (c *cursor) page() *slotpage.Page {
	return slotpage.New(c.frame.Data)
}

// release unpins the current page, if any, and resets the cursor to empty.
func (c *cursor) release(bm *buffer.Manager, file *disk.File) error {
	if !c.present() {
		return nil
	}
	err := bm.UnpinPage(file, c.pageNo, c.dirty)
	c.frame = nil
	c.pageNo = -1
	c.dirty = false
	c.rec = NULL_RID
	return err
}

// reposition releases any currently pinned page and pins pageNo as the new
// cursor position, with curRec left at NULL_RID for the caller to set.
func (c *cursor) reposition(bm *buffer.Manager, file *disk.File, pageNo int32) error {
	if err := c.release(bm, file); err != nil {
		return err
	}
	frame, err := bm.ReadPage(file, pageNo)
	if err != nil {
		return err
	}
	c.frame = frame
	c.pageNo = pageNo
	c.dirty = false
	c.rec = NULL_RID
	return nil
}

// markDirty flips the cursor page's dirty flag.
func (c *cursor) markDirty() {
	c.dirty = true
}
