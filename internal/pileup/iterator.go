package pileup

import (
	"io"

	"github.com/inodb/vibe-pileup/internal/scan"
)

// Iterator is a single-pass pull cursor over the records of one pileup
// source. Construction reads the first record, so a freshly built iterator
// already points at a record (if the input has one):
//
//	it, err := pileup.NewIterator(f, "sample.pileup", pileup.NewReader())
//	for ; err == nil && it.Good(); err = it.Next() {
//		// use it.Record()
//	}
//
// The record returned by Record is owned by the iterator and overwritten on
// every advance; callers that retain records must Clone them.
type Iterator struct {
	s         *scan.Scanner
	reader    *Reader
	rec       Record
	filter    []bool
	useFilter bool
	good      bool
}

// NewIterator creates an iterator over src that keeps all samples. The name
// identifies the source in error messages. A nil reader uses defaults.
func NewIterator(src io.Reader, name string, r *Reader) (*Iterator, error) {
	return newIterator(src, name, r, nil, false)
}

// NewIteratorIndices creates an iterator that materializes only the samples
// at the given indices. All sample fields are still scanned from each line.
func NewIteratorIndices(src io.Reader, name string, indices []int, r *Reader) (*Iterator, error) {
	return newIterator(src, name, r, MakeSampleFilter(indices), true)
}

// NewIteratorMask creates an iterator that materializes only the samples at
// indices where mask is true. A mask shorter than the sample count excludes
// the remaining samples; extra trailing entries are ignored.
func NewIteratorMask(src io.Reader, name string, mask []bool, r *Reader) (*Iterator, error) {
	return newIterator(src, name, r, mask, true)
}

func newIterator(src io.Reader, name string, r *Reader, filter []bool, useFilter bool) (*Iterator, error) {
	if r == nil {
		r = NewReader()
	}
	it := &Iterator{
		s:         scan.NewScanner(src, name),
		reader:    r,
		filter:    filter,
		useFilter: useFilter,
	}
	// Prime the first record.
	if err := it.Next(); err != nil {
		return nil, err
	}
	return it, nil
}

// Good reports whether a valid record is currently available.
func (it *Iterator) Good() bool {
	return it.good
}

// Record returns the current record. Only valid while Good returns true.
func (it *Iterator) Record() *Record {
	return &it.rec
}

// Next advances to the next record. Past the last record, Good becomes
// false and the record is reset. A parse error leaves the iterator not
// good; it must not be advanced again.
func (it *Iterator) Next() error {
	var ok bool
	var err error
	if it.useFilter {
		ok, err = it.reader.ParseLineFiltered(it.s, &it.rec, it.filter)
	} else {
		ok, err = it.reader.ParseLine(it.s, &it.rec)
	}
	if err != nil {
		it.good = false
		return err
	}
	it.good = ok
	return nil
}

// Equal reports whether both iterators are in the same liveness state, i.e.
// both exhausted or both on a record. It does not compare record contents.
func (it *Iterator) Equal(other *Iterator) bool {
	return it.good == other.good
}
