package digest

import (
	"errors"
	"fmt"
	"hash"

	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
	_ "github.com/multiformats/go-multihash/register/blake2"
)

// Names of the supported digest algorithms.
const (
	MD5     = "md5"
	SHA1    = "sha1"
	SHA256  = "sha256"
	SHA384  = "sha384"
	SHA512  = "sha512"
	BLAKE2S = "blake2s"
	BLAKE2B = "blake2b"
)

// Count is the number of digest slots in an encoded response.
const Count = 7

// Algorithms is the digest slot table of the response wire format. A digest
// is identified on the wire by the position of its algorithm in this table,
// so the order must never change.
var Algorithms = [Count]string{MD5, SHA1, SHA256, SHA384, SHA512, BLAKE2S, BLAKE2B}

var codes = [Count]multicodec.Code{
	multicodec.Md5,
	multicodec.Sha1,
	multicodec.Sha2_256,
	multicodec.Sha2_384,
	multicodec.Sha2_512,
	multicodec.Blake2s256,
	multicodec.Blake2b512,
}

var sizes = [Count]int{16, 20, 32, 48, 64, 32, 64}

var (
	ErrUnknownAlgorithm = errors.New("unknown digest algorithm")
	ErrInvalidDigest    = errors.New("invalid digest")
)

// Index returns the wire slot of the named algorithm, or -1 if the algorithm
// is not in the table.
func Index(algo string) int {
	for i, name := range Algorithms {
		if name == algo {
			return i
		}
	}
	return -1
}

// Code returns the multicodec code of the named algorithm.
func Code(algo string) (multicodec.Code, error) {
	i := Index(algo)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}
	return codes[i], nil
}

// Size returns the digest size in bytes of the named algorithm.
func Size(algo string) (int, error) {
	i := Index(algo)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}
	return sizes[i], nil
}

// Multihash wraps a digest in a multihash for the named algorithm.
func Multihash(algo string, d []byte) (multihash.Multihash, error) {
	code, err := Code(algo)
	if err != nil {
		return nil, err
	}
	mh, err := multihash.Encode(d, uint64(code))
	if err != nil {
		return nil, fmt.Errorf("encoding %s multihash: %w", algo, err)
	}
	return mh, nil
}

// Hasher computes every digest in the algorithm table over the bytes written
// to it.
type Hasher struct {
	hashes [Count]hash.Hash
}

func NewHasher() (*Hasher, error) {
	h := Hasher{}
	for i, code := range codes {
		hh, err := multihash.GetHasher(uint64(code))
		if err != nil {
			return nil, fmt.Errorf("getting %s hasher: %w", Algorithms[i], err)
		}
		h.hashes[i] = hh
	}
	return &h, nil
}

func (h *Hasher) Write(p []byte) (int, error) {
	for _, hh := range h.hashes {
		// hash.Hash never returns an error
		hh.Write(p)
	}
	return len(p), nil
}

// Digests returns the digests of everything written so far, keyed by
// algorithm name.
func (h *Hasher) Digests() map[string][]byte {
	out := make(map[string][]byte, Count)
	for i, hh := range h.hashes {
		out[Algorithms[i]] = hh.Sum(nil)
	}
	return out
}

// Sum computes every digest in the algorithm table over data.
func Sum(data []byte) (map[string][]byte, error) {
	h, err := NewHasher()
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Digests(), nil
}
