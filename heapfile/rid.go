package heapfile

// RID identifies a record by the page it lives on and its slot within that
// page. Identifiers are stable across inserts and deletes of other records;
// they become invalid only when the record itself is deleted.
type RID struct {
	PageNo int32
	SlotNo int16
}

// NULL_RID denotes "no record", used by a handle with no cursor position.
var NULL_RID = RID{PageNo: -1, SlotNo: -1}

func (r RID) isNull() bool {
	return r == NULL_RID
}
