// Package slotpage implements the fixed-size slotted page that the
// heap-file layer builds its record storage on top of. A page is a raw
// byte buffer (typically a buffer-manager frame) interpreted through this
// package's accessors; slotpage never owns the bytes it operates on.
package slotpage

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// SENTINEL_END marks the absence of a next page in the chain.
const SENTINEL_END int32 = -1

// pageHeaderSize is the fixed prefix holding nextPage/slotCount/freeSpaceOffset.
const pageHeaderSize = 8

// slotEntrySize is the width of one slot-directory entry (offset, length).
const slotEntrySize = 4

// PAGE_FIXED_OVERHEAD is the minimum space a page must reserve beyond a
// single record's bytes: the page header plus one slot-directory entry.
const PAGE_FIXED_OVERHEAD = pageHeaderSize + slotEntrySize

var (
	// ErrNoSpace is returned by InsertRecord when the page cannot fit rec
	// even after considering reusable tombstoned slots.
	ErrNoSpace = errors.New("slotpage: no space for record")
	// ErrInvalidSlotNo is returned by GetRecord/DeleteRecord for a slot
	// number outside the directory or pointing at a tombstone.
	ErrInvalidSlotNo = errors.New("slotpage: invalid slot number")
	// ErrNoRecords is returned by FirstRecord on a page with no live slots.
	ErrNoRecords = errors.New("slotpage: no records")
	// ErrEndOfPage is returned by NextRecord once the directory is exhausted.
	ErrEndOfPage = errors.New("slotpage: end of page")
)

// Page is a view over a page-sized byte buffer. Layout:
//
//	bytes [0:4)  nextPage   int32 (little-endian)
//	bytes [4:6)  slotCount  int16
//	bytes [6:8)  freeSpace  int16 (offset of the lowest byte used by a record)
//	bytes [8:8+4*slotCount) slot directory, each entry {offset int16, length int16}
//	record bytes packed backward from the end of the buffer
type Page struct {
	Data []byte
}

// New wraps buf (which must be exactly one page long) in a Page view.
func New(buf []byte) *Page {
	return &Page{Data: buf}
}

// Init resets the page to an empty directory with no next page. Called once
// when a page is first allocated.
func (p *Page) Init() {
	for i := range p.Data {
		p.Data[i] = 0
	}
	p.setNextPageRaw(SENTINEL_END)
	p.setSlotCount(0)
	p.setFreeSpaceOffset(int16(len(p.Data)))
}

func (p *Page) setNextPageRaw(v int32) {
	binary.LittleEndian.PutUint32(p.Data[0:4], uint32(v))
}

// NextPage returns the page number linked after this one, or SENTINEL_END.
func (p *Page) NextPage() int32 {
	return int32(binary.LittleEndian.Uint32(p.Data[0:4]))
}

// SetNextPage updates the forward link.
func (p *Page) SetNextPage(pageNo int32) {
	p.setNextPageRaw(pageNo)
}

func (p *Page) slotCount() int16 {
	return int16(binary.LittleEndian.Uint16(p.Data[4:6]))
}

func (p *Page) setSlotCount(n int16) {
	binary.LittleEndian.PutUint16(p.Data[4:6], uint16(n))
}

func (p *Page) freeSpaceOffset() int16 {
	return int16(binary.LittleEndian.Uint16(p.Data[6:8]))
}

func (p *Page) setFreeSpaceOffset(off int16) {
	binary.LittleEndian.PutUint16(p.Data[6:8], uint16(off))
}

func (p *Page) slotEntryOffset(slotNo int16) int {
	return pageHeaderSize + int(slotNo)*slotEntrySize
}

func (p *Page) slot(slotNo int16) (offset, length int16) {
	o := p.slotEntryOffset(slotNo)
	offset = int16(binary.LittleEndian.Uint16(p.Data[o : o+2]))
	length = int16(binary.LittleEndian.Uint16(p.Data[o+2 : o+4]))
	return
}

func (p *Page) setSlot(slotNo int16, offset, length int16) {
	o := p.slotEntryOffset(slotNo)
	binary.LittleEndian.PutUint16(p.Data[o:o+2], uint16(offset))
	binary.LittleEndian.PutUint16(p.Data[o+2:o+4], uint16(length))
}

func (p *Page) directoryEnd(slotCount int16) int {
	return pageHeaderSize + int(slotCount)*slotEntrySize
}

// InsertRecord writes rec into the first available tombstoned slot, or
// appends a new slot, returning its slot number. Fails with ErrNoSpace if
// neither the existing directory nor a fresh entry can accommodate rec.
func (p *Page) InsertRecord(rec []byte) (int16, error) {
	count := p.slotCount()

	for slotNo := int16(0); slotNo < count; slotNo++ {
		offset, _ := p.slot(slotNo)
		if offset == -1 {
			if !p.fits(count, len(rec)) {
				return 0, ErrNoSpace
			}
			newOffset := int(p.freeSpaceOffset()) - len(rec)
			copy(p.Data[newOffset:newOffset+len(rec)], rec)
			p.setSlot(slotNo, int16(newOffset), int16(len(rec)))
			p.setFreeSpaceOffset(int16(newOffset))
			return slotNo, nil
		}
	}

	if !p.fits(count+1, len(rec)) {
		return 0, ErrNoSpace
	}
	newOffset := int(p.freeSpaceOffset()) - len(rec)
	copy(p.Data[newOffset:newOffset+len(rec)], rec)
	p.setSlot(count, int16(newOffset), int16(len(rec)))
	p.setSlotCount(count + 1)
	p.setFreeSpaceOffset(int16(newOffset))
	return count, nil
}

// fits reports whether a record of recLen bytes can coexist with
// slotCountAfter directory entries without the directory crossing into the
// record area.
func (p *Page) fits(slotCountAfter int16, recLen int) bool {
	dirEnd := p.directoryEnd(slotCountAfter)
	return dirEnd+recLen <= int(p.freeSpaceOffset())
}

// GetRecord returns a copy-free view of the record at slotNo.
func (p *Page) GetRecord(slotNo int16) ([]byte, error) {
	if slotNo < 0 || slotNo >= p.slotCount() {
		return nil, ErrInvalidSlotNo
	}
	offset, length := p.slot(slotNo)
	if offset == -1 {
		return nil, ErrInvalidSlotNo
	}
	return p.Data[offset : offset+length], nil
}

// DeleteRecord tombstones slotNo. The freed bytes are not reclaimed until
// another record happens to reuse the slot; no compaction is performed.
func (p *Page) DeleteRecord(slotNo int16) error {
	if slotNo < 0 || slotNo >= p.slotCount() {
		return ErrInvalidSlotNo
	}
	offset, _ := p.slot(slotNo)
	if offset == -1 {
		return ErrInvalidSlotNo
	}
	p.setSlot(slotNo, -1, 0)
	return nil
}

// FirstRecord returns the slot number of the first live record, in
// ascending slot order.
func (p *Page) FirstRecord() (int16, error) {
	count := p.slotCount()
	for slotNo := int16(0); slotNo < count; slotNo++ {
		offset, _ := p.slot(slotNo)
		if offset != -1 {
			return slotNo, nil
		}
	}
	return 0, ErrNoRecords
}

// NextRecord returns the slot number of the first live record after prev.
func (p *Page) NextRecord(prev int16) (int16, error) {
	count := p.slotCount()
	for slotNo := prev + 1; slotNo < count; slotNo++ {
		offset, _ := p.slot(slotNo)
		if offset != -1 {
			return slotNo, nil
		}
	}
	return 0, ErrEndOfPage
}
