package archive

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
)

var ErrMissingIndex = errors.New("index block not found")

func init() {
	cbor.RegisterCborType(index{})
}

// index is the root block of an archive written by [Writer]. It lists every
// record in the order it was put.
type index struct {
	Records []cid.Cid
}

// Writer collects encoded records and writes them out as a CAR. It is safe
// for concurrent use.
type Writer struct {
	mu     sync.RWMutex
	keys   []cid.Cid
	blocks map[cid.Cid]Block
}

func NewWriter() *Writer {
	return &Writer{blocks: map[cid.Cid]Block{}}
}

// Put adds an encoded record to the archive. A record that is already in the
// archive is not added again.
func (w *Writer) Put(data []byte) (cid.Cid, error) {
	b, err := NewBlock(data)
	if err != nil {
		return cid.Undef, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.blocks[b.Link()]; ok {
		return b.Link(), nil
	}
	w.blocks[b.Link()] = b
	w.keys = append(w.keys, b.Link())
	return b.Link(), nil
}

// Len returns the number of distinct records in the archive.
func (w *Writer) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.keys)
}

// WriteTo writes the archive to out. The single root of the archive is an
// index block listing the records.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	w.mu.RLock()
	keys := append([]cid.Cid(nil), w.keys...)
	blocks := make([]Block, 0, len(keys))
	for _, k := range keys {
		blocks = append(blocks, w.blocks[k])
	}
	w.mu.RUnlock()

	ib, err := cbor.DumpObject(index{Records: keys})
	if err != nil {
		return 0, fmt.Errorf("encoding index: %w", err)
	}
	root, err := newBlock(cid.DagCBOR, ib)
	if err != nil {
		return 0, err
	}

	it := func(yield func(Block, error) bool) {
		for _, b := range blocks {
			if !yield(b, nil) {
				return
			}
		}
		yield(root, nil)
	}

	r := Encode([]cid.Cid{root.Link()}, it)
	defer r.Close()
	n, err := io.Copy(out, r)
	if err != nil {
		r.CloseWithError(err)
		return n, fmt.Errorf("writing archive: %w", err)
	}
	return n, nil
}

// Records reads an archive written by [Writer] and returns the records in
// the order they were put.
func Records(roots []cid.Cid, blocks iter.Seq2[Block, error]) ([][]byte, error) {
	if len(roots) != 1 {
		return nil, fmt.Errorf("unexpected number of roots: %d", len(roots))
	}

	data := map[cid.Cid][]byte{}
	for b, err := range blocks {
		if err != nil {
			return nil, err
		}
		data[b.Link()] = b.Bytes()
	}

	ib, ok := data[roots[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingIndex, roots[0])
	}
	var idx index
	if err := cbor.DecodeInto(ib, &idx); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	records := make([][]byte, 0, len(idx.Records))
	for _, c := range idx.Records {
		b, ok := data[c]
		if !ok {
			return nil, fmt.Errorf("missing record block: %s", c)
		}
		records = append(records, b)
	}
	return records, nil
}
