package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	"github.com/ipld/go-car/util"
	"github.com/multiformats/go-multihash"
)

// ContentType is the value the HTTP Content-Type header should have for CARs.
// See https://www.iana.org/assignments/media-types/application/vnd.ipld.car
const ContentType = "application/vnd.ipld.car"

var (
	ErrInvalidVersion = errors.New("invalid car version")
	ErrIntegrity      = errors.New("mismatch in content integrity")
)

func init() {
	cbor.RegisterCborType(carHeader{})
}

type carHeader struct {
	Roots   []cid.Cid
	Version uint64
}

// Block is a CID and the bytes it addresses.
type Block struct {
	link cid.Cid
	data []byte
}

func (b Block) Link() cid.Cid {
	return b.link
}

func (b Block) Bytes() []byte {
	return b.data
}

// NewBlock creates a raw block addressed by the sha2-256 hash of data.
func NewBlock(data []byte) (Block, error) {
	return newBlock(cid.Raw, data)
}

func newBlock(codec uint64, data []byte) (Block, error) {
	c, err := cid.Prefix{
		Version:  1,
		Codec:    codec,
		MhType:   multihash.SHA2_256,
		MhLength: -1,
	}.Sum(data)
	if err != nil {
		return Block{}, fmt.Errorf("hashing block: %w", err)
	}
	return Block{link: c, data: data}, nil
}

// Encode streams a CAR containing the given roots and blocks. A caller that
// stops reading early must close the reader to release the encoder.
func Encode(roots []cid.Cid, blocks iter.Seq2[Block, error]) *io.PipeReader {
	reader, writer := io.Pipe()
	go func() {
		h := carHeader{Roots: roots, Version: 1}
		hb, err := cbor.DumpObject(h)
		if err != nil {
			writer.CloseWithError(fmt.Errorf("writing CAR header: %w", err))
			return
		}
		if err := util.LdWrite(writer, hb); err != nil {
			writer.CloseWithError(fmt.Errorf("writing CAR header: %w", err))
			return
		}
		for block, err := range blocks {
			if err != nil {
				writer.CloseWithError(fmt.Errorf("writing CAR blocks: %w", err))
				return
			}
			if err := util.LdWrite(writer, block.Link().Bytes(), block.Bytes()); err != nil {
				writer.CloseWithError(fmt.Errorf("writing CAR blocks: %w", err))
				return
			}
		}
		writer.Close()
	}()
	return reader
}

// Decode reads the header of a CAR and returns its roots and an iterator over
// its blocks. The iterator verifies every block against its CID and can only
// be consumed once.
func Decode(reader io.Reader) ([]cid.Cid, iter.Seq2[Block, error], error) {
	br := bufio.NewReader(reader)

	hb, err := util.LdRead(br)
	if err != nil {
		return nil, nil, fmt.Errorf("reading CAR header: %w", err)
	}

	var ch carHeader
	if err := cbor.DecodeInto(hb, &ch); err != nil {
		return nil, nil, fmt.Errorf("invalid header: %w", err)
	}

	if ch.Version != 1 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidVersion, ch.Version)
	}

	return ch.Roots, func(yield func(Block, error) bool) {
		for {
			c, data, err := util.ReadNode(br)
			if err != nil {
				if err != io.EOF {
					yield(Block{}, fmt.Errorf("reading CAR block: %w", err))
				}
				return
			}

			hashed, err := c.Prefix().Sum(data)
			if err != nil {
				yield(Block{}, err)
				return
			}

			if !hashed.Equals(c) {
				yield(Block{}, fmt.Errorf("%w, name: %s, data: %s", ErrIntegrity, c, hashed))
				return
			}

			if !yield(Block{link: c, data: data}, nil) {
				return
			}
		}
	}, nil
}
