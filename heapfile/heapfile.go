// Package heapfile implements the heap-file layer: an on-disk file of
// pages presented as an unordered collection of variable-length records,
// with point lookup, a filtered forward-only scan, and append-only insert.
package heapfile

import (
	"github.com/malzahar-project/heapfiledb/buffer"
	"github.com/malzahar-project/heapfiledb/disk"
	"github.com/malzahar-project/heapfiledb/logging"
	"github.com/malzahar-project/heapfiledb/slotpage"
)

// HeapFile is a handle on an open heap file: a pinned header page plus an
// at-most-one pinned data-page cursor, shared with any Scan or Insert view
// built on top of it.
type HeapFile struct {
	dm   *disk.Manager
	bm   *buffer.Manager
	file *disk.File

	headerFrame  *buffer.Frame
	headerPageNo int32
	hdrDirty     bool

	cur cursor
}

func (hf *HeapFile) hdr() header {
	return header{data: hf.headerFrame.Data}
}

// Create initializes a new heap file named name: a header page and one
// empty data page. Fails with ErrFileExists if the file is already present.
func Create(dm *disk.Manager, bm *buffer.Manager, name string) error {
	if existing, err := dm.OpenFile(name); err == nil {
		existing.Close()
		return ErrFileExists
	}

	if err := dm.CreateFile(name); err != nil {
		return err
	}
	file, err := dm.OpenFile(name)
	if err != nil {
		return err
	}
	defer file.Close()

	headerFrame, headerPageNo, err := bm.AllocPage(file)
	if err != nil {
		return err
	}
	dataFrame, dataPageNo, err := bm.AllocPage(file)
	if err != nil {
		logging.WarnErr("heapfile.Create.unpinHeader", bm.UnpinPage(file, headerPageNo, false))
		return err
	}

	slotpage.New(dataFrame.Data).Init()

	h := header{data: headerFrame.Data}
	h.setFileName(name)
	h.setFirstPage(dataPageNo)
	h.setLastPage(dataPageNo)
	h.setPageCnt(1)
	h.setRecCnt(0)

	if err := bm.UnpinPage(file, dataPageNo, true); err != nil {
		logging.WarnErr("heapfile.Create.unpinData", err)
	}
	if err := bm.UnpinPage(file, headerPageNo, true); err != nil {
		logging.WarnErr("heapfile.Create.unpinHeader", err)
	}
	// file is about to be closed and reopened (by the caller's eventual
	// Open) as a distinct *disk.File, which the buffer pool's frame keys
	// treat as a different identity. Flush now so the header and initial
	// data page are actually on disk before that happens.
	return bm.FlushFile(file)
}

// Destroy removes a heap file's backing storage.
func Destroy(dm *disk.Manager, name string) error {
	return dm.DestroyFile(name)
}

// Open opens an existing heap file, pinning its header page for the
// lifetime of the returned handle. The data-page cursor starts absent and
// is pinned lazily on first use.
func Open(dm *disk.Manager, bm *buffer.Manager, name string) (*HeapFile, error) {
	file, err := dm.OpenFile(name)
	if err != nil {
		return nil, err
	}

	headerPageNo := file.FirstPage()
	headerFrame, err := bm.ReadPage(file, headerPageNo)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &HeapFile{
		dm:           dm,
		bm:           bm,
		file:         file,
		headerFrame:  headerFrame,
		headerPageNo: headerPageNo,
		cur:          newCursor(),
	}, nil
}

// Close unpins the cursor page (if any) and the header page, then flushes
// this file's dirty frames and closes the underlying file. Every step runs
// even if an earlier one fails; the first error encountered is returned,
// later ones are logged.
func (hf *HeapFile) Close() error {
	var first error
	record := func(err error) {
		if err == nil {
			return
		}
		if first == nil {
			first = err
		} else {
			logging.WarnErr("heapfile.Close", err)
		}
	}

	record(hf.cur.release(hf.bm, hf.file))
	record(hf.bm.UnpinPage(hf.file, hf.headerPageNo, hf.hdrDirty))
	hf.hdrDirty = false
	// A later Open reopens the file as a distinct *disk.File, which the
	// buffer pool's frame keys treat as a different identity, so any
	// dirty page still resident under this file must be written back now.
	record(hf.bm.FlushFile(hf.file))
	record(hf.file.Close())
	return first
}

// RecCnt returns the number of live records across the whole chain.
func (hf *HeapFile) RecCnt() int32 {
	return hf.hdr().recCnt()
}

// GetRecord returns the bytes of the record identified by rid.
func (hf *HeapFile) GetRecord(rid RID) ([]byte, error) {
	if !hf.cur.present() {
		if err := hf.cur.reposition(hf.bm, hf.file, rid.PageNo); err != nil {
			return nil, err
		}
	} else if hf.cur.pageNo != rid.PageNo {
		if err := hf.cur.reposition(hf.bm, hf.file, rid.PageNo); err != nil {
			return nil, err
		}
	}

	rec, err := hf.cur.page().GetRecord(rid.SlotNo)
	if err != nil {
		return nil, err
	}
	hf.cur.rec = rid
	return rec, nil
}
