package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/storacha/go-hximport/digest"
	"github.com/storacha/go-hximport/response"
)

// decodeResponse reads one response written by [WriteResponse]. Sentinel
// values decode to absent optionals.
func decodeResponse(r io.Reader) (*response.Response, error) {
	d := decoder{r: r}
	res := response.Response{Digests: map[string][]byte{}}
	res.Time = d.optional()
	res.URL = string(d.blob())
	res.Status = int(int64(d.uint64()) - StatusBias)
	res.Type = string(d.blob())
	res.Length = d.optional()
	count := d.uint16()
	if d.err == nil && count != digest.Count {
		return nil, fmt.Errorf("unexpected digest count: %d", count)
	}
	for _, algo := range digest.Algorithms {
		b := d.blob()
		if len(b) > 0 {
			res.Digests[algo] = b
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return &res, nil
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) read(n int) []byte {
	if d.err != nil {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.err = err
		return nil
	}
	return b
}

func (d *decoder) uint16() uint16 {
	b := d.read(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (d *decoder) uint64() uint64 {
	b := d.read(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (d *decoder) optional() response.Optional {
	v := d.uint64()
	if v == Absent {
		return response.None()
	}
	return response.Some(v)
}

func (d *decoder) blob() []byte {
	n := d.uint16()
	if n == 0 {
		return nil
	}
	return d.read(int(n))
}
