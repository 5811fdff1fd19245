package heapfile

import (
	"github.com/malzahar-project/heapfiledb/logging"
	"github.com/malzahar-project/heapfiledb/slotpage"
)

// Insert is an append-only view over a HeapFile: every InsertRecord targets
// the chain's tail page, allocating a new one when it is full.
type Insert struct {
	hf *HeapFile
}

// NewInsert creates an insert view over hf.
func NewInsert(hf *HeapFile) *Insert {
	return &Insert{hf: hf}
}

// InsertRecord appends rec to the file and returns its rid. Fails with
// ErrInvalidRecLen if rec cannot fit on any page regardless of occupancy.
func (ins *Insert) InsertRecord(rec []byte) (RID, error) {
	hf := ins.hf
	pageSize := len(hf.headerFrame.Data)
	if len(rec) > pageSize-slotpage.PAGE_FIXED_OVERHEAD {
		return NULL_RID, ErrInvalidRecLen
	}

	if !hf.cur.present() || hf.cur.pageNo != hf.hdr().lastPage() {
		if err := hf.cur.reposition(hf.bm, hf.file, hf.hdr().lastPage()); err != nil {
			return NULL_RID, err
		}
	}

	slotNo, err := hf.cur.page().InsertRecord(rec)
	if err == slotpage.ErrNoSpace {
		if err := ins.spillToNewPage(); err != nil {
			return NULL_RID, err
		}
		slotNo, err = hf.cur.page().InsertRecord(rec)
		if err != nil {
			return NULL_RID, err
		}
	} else if err != nil {
		return NULL_RID, err
	}

	h := hf.hdr()
	h.setRecCnt(h.recCnt() + 1)
	hf.hdrDirty = true
	hf.cur.markDirty()

	rid := RID{PageNo: hf.cur.pageNo, SlotNo: slotNo}
	hf.cur.rec = rid
	return rid, nil
}

// spillToNewPage allocates a fresh tail page, links it from the old tail,
// updates the header, and repositions the cursor onto it. Briefly both the
// new tail and the old tail are pinned at once, in that order, as the link
// is written.
func (ins *Insert) spillToNewPage() error {
	hf := ins.hf
	oldTailNo := hf.cur.pageNo

	if err := hf.cur.release(hf.bm, hf.file); err != nil {
		logging.WarnErr("heapfile.Insert.spill.releaseOldTail", err)
	}

	newFrame, newPageNo, err := hf.bm.AllocPage(hf.file)
	if err != nil {
		return err
	}
	slotpage.New(newFrame.Data).Init()

	oldTailFrame, err := hf.bm.ReadPage(hf.file, oldTailNo)
	if err != nil {
		logging.WarnErr("heapfile.Insert.spill.unpinNewPage", hf.bm.UnpinPage(hf.file, newPageNo, true))
		return err
	}
	slotpage.New(oldTailFrame.Data).SetNextPage(newPageNo)
	if err := hf.bm.UnpinPage(hf.file, oldTailNo, true); err != nil {
		return err
	}

	h := hf.hdr()
	h.setLastPage(newPageNo)
	h.setPageCnt(h.pageCnt() + 1)
	hf.hdrDirty = true

	hf.cur.frame = newFrame
	hf.cur.pageNo = newPageNo
	hf.cur.dirty = true
	hf.cur.rec = NULL_RID
	return nil
}
