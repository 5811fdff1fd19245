package heapfile

import "encoding/binary"

// Header page layout. Distinct from a slotpage.Page: the header page is
// never a slotted page, it is a handful of fixed fields.
const (
	hdrFileNameSize = 64
	hdrFirstPage    = hdrFileNameSize
	hdrLastPage     = hdrFirstPage + 4
	hdrPageCnt      = hdrLastPage + 4
	hdrRecCnt       = hdrPageCnt + 4
)

type header struct {
	data []byte
}

func (h header) fileName() string {
	end := 0
	for end < hdrFileNameSize && h.data[end] != 0 {
		end++
	}
	return string(h.data[:end])
}

func (h header) setFileName(name string) {
	for i := range h.data[:hdrFileNameSize] {
		h.data[i] = 0
	}
	copy(h.data[:hdrFileNameSize], name)
}

func (h header) firstPage() int32 {
	return int32(binary.LittleEndian.Uint32(h.data[hdrFirstPage : hdrFirstPage+4]))
}

func (h header) setFirstPage(v int32) {
	binary.LittleEndian.PutUint32(h.data[hdrFirstPage:hdrFirstPage+4], uint32(v))
}

func (h header) lastPage() int32 {
	return int32(binary.LittleEndian.Uint32(h.data[hdrLastPage : hdrLastPage+4]))
}

func (h header) setLastPage(v int32) {
	binary.LittleEndian.PutUint32(h.data[hdrLastPage:hdrLastPage+4], uint32(v))
}

func (h header) pageCnt() int32 {
	return int32(binary.LittleEndian.Uint32(h.data[hdrPageCnt : hdrPageCnt+4]))
}

func (h header) setPageCnt(v int32) {
	binary.LittleEndian.PutUint32(h.data[hdrPageCnt:hdrPageCnt+4], uint32(v))
}

func (h header) recCnt() int32 {
	return int32(binary.LittleEndian.Uint32(h.data[hdrRecCnt : hdrRecCnt+4]))
}

func (h header) setRecCnt(v int32) {
	binary.LittleEndian.PutUint32(h.data[hdrRecCnt:hdrRecCnt+4], uint32(v))
}
