package heapfile

import "github.com/pkg/errors"

var (
	// ErrFileExists is returned by Create when the named file already exists.
	ErrFileExists = errors.New("heapfile: file exists")
	// ErrBadScanParm is returned by StartScan for an invalid predicate configuration.
	ErrBadScanParm = errors.New("heapfile: invalid scan parameters")
	// ErrInvalidRecLen is returned by InsertRecord when rec cannot fit on any page.
	ErrInvalidRecLen = errors.New("heapfile: record too large for page")
	// ErrFileEOF is returned by ScanNext once the chain is exhausted.
	ErrFileEOF = errors.New("heapfile: end of file")
)
