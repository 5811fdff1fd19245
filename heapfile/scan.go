package heapfile

import (
	"bytes"
	"math"

	"github.com/malzahar-project/heapfiledb/logging"
	"github.com/malzahar-project/heapfiledb/slotpage"
)

// FieldType names the interpretation applied to the bytes a scan predicate
// compares.
type FieldType int

const (
	Int FieldType = iota
	Float
	String
)

// CompareOp is one of the six relational operators a scan predicate can apply.
type CompareOp int

const (
	LT CompareOp = iota
	LTE
	EQ
	GTE
	GT
	NE
)

// Scan is a filtered, forward-only, resumable iterator over a HeapFile's
// records. It shares the HeapFile's cursor rather than keeping its own pin.
type Scan struct {
	hf *HeapFile

	offset    int
	length    int
	fieldType FieldType
	op        CompareOp
	filter    []byte
	hasFilter bool

	markedPageNo int32
	markedRec    RID
	marked       bool
}

// NewScan creates a scan view over hf. hf must not already have an active
// cursor position from an unrelated operation when scanning begins.
func NewScan(hf *HeapFile) *Scan {
	return &Scan{hf: hf}
}

// StartScan installs a predicate; subsequent ScanNext calls only yield
// records for which matchRec is true. filter == nil clears the predicate.
func (s *Scan) StartScan(offset, length int, fieldType FieldType, filter []byte, op CompareOp) error {
	if filter == nil {
		s.hasFilter = false
		s.filter = nil
		return nil
	}
	if offset < 0 || length < 1 {
		return ErrBadScanParm
	}
	switch fieldType {
	case Int, Float:
		if length != 4 {
			return ErrBadScanParm
		}
	case String:
	default:
		return ErrBadScanParm
	}
	switch op {
	case LT, LTE, EQ, GTE, GT, NE:
	default:
		return ErrBadScanParm
	}
	if len(filter) != length {
		return ErrBadScanParm
	}

	s.offset = offset
	s.length = length
	s.fieldType = fieldType
	s.op = op
	s.filter = filter
	s.hasFilter = true
	return nil
}

func (s *Scan) matchRec(rec []byte) bool {
	if !s.hasFilter {
		return true
	}
	if s.offset+s.length > len(rec) {
		return false
	}
	attr := rec[s.offset : s.offset+s.length]

	var diff int
	switch s.fieldType {
	case Int:
		a := int32(le32(attr))
		f := int32(le32(s.filter))
		switch {
		case a < f:
			diff = -1
		case a > f:
			diff = 1
		}
	case Float:
		a := math.Float32frombits(le32(attr))
		f := math.Float32frombits(le32(s.filter))
		switch {
		case a < f:
			diff = -1
		case a > f:
			diff = 1
		}
	case String:
		diff = bytes.Compare(attr, s.filter)
	}

	switch s.op {
	case LT:
		return diff < 0
	case LTE:
		return diff <= 0
	case EQ:
		return diff == 0
	case GTE:
		return diff >= 0
	case GT:
		return diff > 0
	case NE:
		return diff != 0
	}
	return false
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// ScanNext advances to the next record satisfying the predicate and returns
// its rid. Returns ErrFileEOF once the chain is exhausted.
func (s *Scan) ScanNext() (RID, error) {
	hf := s.hf

	if !hf.cur.present() {
		if err := hf.cur.reposition(hf.bm, hf.file, hf.hdr().firstPage()); err != nil {
			return NULL_RID, err
		}
	}

	for {
		var slotNo int16
		var err error
		if hf.cur.rec.isNull() {
			slotNo, err = hf.cur.page().FirstRecord()
		} else {
			slotNo, err = hf.cur.page().NextRecord(hf.cur.rec.SlotNo)
		}

		if err == nil {
			rec, rerr := hf.cur.page().GetRecord(slotNo)
			if rerr != nil {
				return NULL_RID, rerr
			}
			candidate := RID{PageNo: hf.cur.pageNo, SlotNo: slotNo}
			hf.cur.rec = candidate
			if s.matchRec(rec) {
				return candidate, nil
			}
			continue
		}

		// end of current page: check the link before pinning anything.
		next := hf.cur.page().NextPage()
		if next == slotpage.SENTINEL_END {
			hf.cur.rec = NULL_RID
			return NULL_RID, ErrFileEOF
		}
		if err := hf.cur.reposition(hf.bm, hf.file, next); err != nil {
			return NULL_RID, err
		}
	}
}

// GetRecord returns the record currently identified by the scan's cursor
// position, leaving the page pinned.
func (s *Scan) GetRecord() ([]byte, error) {
	return s.hf.cur.page().GetRecord(s.hf.cur.rec.SlotNo)
}

// RecordBytes returns a live, mutable view into the cursor page's backing
// array for the current record. Callers that mutate it must call MarkDirty.
func (s *Scan) RecordBytes() []byte {
	rec, _ := s.GetRecord()
	return rec
}

// DeleteRecord removes the current record from the cursor page and
// decrements the file's record count.
func (s *Scan) DeleteRecord() error {
	hf := s.hf
	if err := hf.cur.page().DeleteRecord(hf.cur.rec.SlotNo); err != nil {
		return err
	}
	hf.cur.markDirty()
	h := hf.hdr()
	h.setRecCnt(h.recCnt() - 1)
	hf.hdrDirty = true
	return nil
}

// MarkDirty flags the cursor page as modified, so it is written back on
// eviction or unpin.
func (s *Scan) MarkDirty() {
	s.hf.cur.markDirty()
}

// MarkScan snapshots the current cursor position for a later ResetScan.
func (s *Scan) MarkScan() {
	s.markedPageNo = s.hf.cur.pageNo
	s.markedRec = s.hf.cur.rec
	s.marked = true
}

// ResetScan restores the cursor position captured by the most recent
// MarkScan. If the mark was on a different page than the current cursor,
// the dirty flag does not survive the reset; callers must MarkDirty again
// after resuming mutation.
func (s *Scan) ResetScan() error {
	hf := s.hf
	if !s.marked {
		return nil
	}
	if hf.cur.pageNo == s.markedPageNo {
		hf.cur.rec = s.markedRec
		return nil
	}
	if err := hf.cur.reposition(hf.bm, hf.file, s.markedPageNo); err != nil {
		return err
	}
	hf.cur.rec = s.markedRec
	return nil
}

// EndScan unpins the cursor page, if present. Idempotent.
func (s *Scan) EndScan() error {
	err := s.hf.cur.release(s.hf.bm, s.hf.file)
	if err != nil {
		logging.WarnErr("heapfile.Scan.EndScan", err)
	}
	return err
}
