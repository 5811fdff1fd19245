package heapfile_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malzahar-project/heapfiledb/buffer"
	"github.com/malzahar-project/heapfiledb/config"
	"github.com/malzahar-project/heapfiledb/disk"
	"github.com/malzahar-project/heapfiledb/heapfile"
)

type testEnv struct {
	dm *disk.Manager
	bm *buffer.Manager
}

func newTestEnv(t *testing.T, pageSize, buffers int) *testEnv {
	t.Helper()
	cfg := config.NewDBConfigWithParams(t.TempDir(), pageSize, buffers)
	return &testEnv{dm: disk.NewManager(cfg), bm: buffer.NewManager(cfg)}
}

func intRecord(n int32, tail string) []byte {
	buf := make([]byte, 4+len(tail))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	copy(buf[4:], tail)
	return buf
}

// reopen closes hf and opens a fresh handle on the same file, so a scan
// that follows a round of inserts starts from an empty cursor rather than
// resuming wherever the insert view left it — the two views share one
// cursor per SPEC_FULL.md's composition-over-inheritance design, so
// starting a scan cleanly means starting it on its own handle.
func reopen(t *testing.T, env *testEnv, hf *heapfile.HeapFile, name string) *heapfile.HeapFile {
	t.Helper()
	require.NoError(t, hf.Close())
	fresh, err := heapfile.Open(env.dm, env.bm, name)
	require.NoError(t, err)
	return fresh
}

// S1: create, insert, lookup.
func TestCreateInsertLookup(t *testing.T) {
	env := newTestEnv(t, 256, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "s1"))

	hf, err := heapfile.Open(env.dm, env.bm, "s1")
	require.NoError(t, err)
	defer func() { hf.Close() }()

	ins := heapfile.NewInsert(hf)
	rid, err := ins.InsertRecord([]byte("alice"))
	require.NoError(t, err)

	got, err := hf.GetRecord(rid)
	require.NoError(t, err)
	require.Equal(t, "alice", string(got))
	require.EqualValues(t, 1, hf.RecCnt())
}

// S2: page spill when the tail page fills up.
func TestPageSpillOnFullTail(t *testing.T) {
	env := newTestEnv(t, 64, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "s2"))

	hf, err := heapfile.Open(env.dm, env.bm, "s2")
	require.NoError(t, err)
	defer func() { hf.Close() }()

	ins := heapfile.NewInsert(hf)
	var rids []heapfile.RID
	for i := 0; i < 20; i++ {
		rid, err := ins.InsertRecord(intRecord(int32(i), "xx"))
		require.NoError(t, err)
		rids = append(rids, rid)
	}
	require.EqualValues(t, 20, hf.RecCnt())

	pages := map[int32]bool{}
	for _, r := range rids {
		pages[r.PageNo] = true
	}
	require.Greater(t, len(pages), 1, "expected insert to spill across multiple pages")

	for i, rid := range rids {
		got, err := hf.GetRecord(rid)
		require.NoError(t, err)
		require.EqualValues(t, i, int32(binary.LittleEndian.Uint32(got[0:4])))
	}
}

// S3: filtered scan, INTEGER/EQ.
func TestFilteredScanIntegerEQ(t *testing.T) {
	env := newTestEnv(t, 512, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "s3"))
	hf, err := heapfile.Open(env.dm, env.bm, "s3")
	require.NoError(t, err)

	ins := heapfile.NewInsert(hf)
	for i := 0; i < 10; i++ {
		_, err := ins.InsertRecord(intRecord(int32(i%3), "v"))
		require.NoError(t, err)
	}

	hf = reopen(t, env, hf, "s3")
	defer func() { hf.Close() }()

	scan := heapfile.NewScan(hf)
	filter := make([]byte, 4)
	binary.LittleEndian.PutUint32(filter, uint32(1))
	require.NoError(t, scan.StartScan(0, 4, heapfile.Int, filter, heapfile.EQ))

	count := 0
	for {
		_, err := scan.ScanNext()
		if err == heapfile.ErrFileEOF {
			break
		}
		require.NoError(t, err)
		rec, err := scan.GetRecord()
		require.NoError(t, err)
		require.EqualValues(t, 1, int32(binary.LittleEndian.Uint32(rec[0:4])))
		count++
	}
	require.Equal(t, 3, count)
	require.NoError(t, scan.EndScan())
}

// S4: filtered scan, STRING/LT.
func TestFilteredScanStringLT(t *testing.T) {
	env := newTestEnv(t, 512, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "s4"))
	hf, err := heapfile.Open(env.dm, env.bm, "s4")
	require.NoError(t, err)

	ins := heapfile.NewInsert(hf)
	names := []string{"bob", "amy", "cid", "ann"}
	for _, n := range names {
		buf := make([]byte, 3)
		copy(buf, n)
		_, err := ins.InsertRecord(buf)
		require.NoError(t, err)
	}

	hf = reopen(t, env, hf, "s4")
	defer func() { hf.Close() }()

	scan := heapfile.NewScan(hf)
	require.NoError(t, scan.StartScan(0, 3, heapfile.String, []byte("bob"), heapfile.LT))

	var matched []string
	for {
		_, err := scan.ScanNext()
		if err == heapfile.ErrFileEOF {
			break
		}
		require.NoError(t, err)
		rec, err := scan.GetRecord()
		require.NoError(t, err)
		matched = append(matched, string(rec))
	}
	require.ElementsMatch(t, []string{"amy", "ann"}, matched)
	require.NoError(t, scan.EndScan())
}

// S5: mark and reset.
func TestMarkAndResetScan(t *testing.T) {
	env := newTestEnv(t, 512, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "s5"))
	hf, err := heapfile.Open(env.dm, env.bm, "s5")
	require.NoError(t, err)

	ins := heapfile.NewInsert(hf)
	for i := 0; i < 5; i++ {
		_, err := ins.InsertRecord(intRecord(int32(i), ""))
		require.NoError(t, err)
	}

	hf = reopen(t, env, hf, "s5")
	defer func() { hf.Close() }()

	scan := heapfile.NewScan(hf)
	require.NoError(t, scan.StartScan(0, 0, heapfile.Int, nil, heapfile.EQ))

	rid1, err := scan.ScanNext()
	require.NoError(t, err)
	scan.MarkScan()

	rid2, err := scan.ScanNext()
	require.NoError(t, err)
	require.NotEqual(t, rid1, rid2)

	require.NoError(t, scan.ResetScan())
	ridAfterReset, err := scan.ScanNext()
	require.NoError(t, err)
	require.Equal(t, rid2, ridAfterReset)
	require.NoError(t, scan.EndScan())
}

// S6: delete and recount.
func TestDeleteAndRecount(t *testing.T) {
	env := newTestEnv(t, 512, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "s6"))
	hf, err := heapfile.Open(env.dm, env.bm, "s6")
	require.NoError(t, err)

	ins := heapfile.NewInsert(hf)
	for i := 0; i < 4; i++ {
		_, err := ins.InsertRecord(intRecord(int32(i), ""))
		require.NoError(t, err)
	}
	require.EqualValues(t, 4, hf.RecCnt())

	hf = reopen(t, env, hf, "s6")
	defer func() { hf.Close() }()

	scan := heapfile.NewScan(hf)
	filter := make([]byte, 4)
	binary.LittleEndian.PutUint32(filter, uint32(1))
	require.NoError(t, scan.StartScan(0, 4, heapfile.Int, filter, heapfile.EQ))

	_, err = scan.ScanNext()
	require.NoError(t, err)
	require.NoError(t, scan.DeleteRecord())
	require.NoError(t, scan.EndScan())

	require.EqualValues(t, 3, hf.RecCnt())
}

func TestInsertRecordTooLargeFails(t *testing.T) {
	env := newTestEnv(t, 64, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "big"))
	hf, err := heapfile.Open(env.dm, env.bm, "big")
	require.NoError(t, err)
	defer func() { hf.Close() }()

	ins := heapfile.NewInsert(hf)
	_, err = ins.InsertRecord(make([]byte, 60))
	require.ErrorIs(t, err, heapfile.ErrInvalidRecLen)
}

func TestScanEmptyFileReturnsEOFImmediately(t *testing.T) {
	env := newTestEnv(t, 256, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "empty"))
	hf, err := heapfile.Open(env.dm, env.bm, "empty")
	require.NoError(t, err)
	defer func() { hf.Close() }()

	scan := heapfile.NewScan(hf)
	_, err = scan.ScanNext()
	require.ErrorIs(t, err, heapfile.ErrFileEOF)
}

func TestCreateExistingFileFails(t *testing.T) {
	env := newTestEnv(t, 256, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "dup"))
	require.ErrorIs(t, heapfile.Create(env.dm, env.bm, "dup"), heapfile.ErrFileExists)
}

func TestCreateDestroyRoundTrip(t *testing.T) {
	env := newTestEnv(t, 256, 4)
	require.NoError(t, heapfile.Create(env.dm, env.bm, "roundtrip"))
	require.NoError(t, heapfile.Destroy(env.dm, "roundtrip"))
	_, err := env.dm.OpenFile("roundtrip")
	require.ErrorIs(t, err, disk.ErrFileNotFound)
}
