package digest

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func TestAlgorithms(t *testing.T) {
	require.Equal(t, [Count]string{"md5", "sha1", "sha256", "sha384", "sha512", "blake2s", "blake2b"}, Algorithms)

	for i, algo := range Algorithms {
		require.Equal(t, i, Index(algo))
	}
	require.Equal(t, -1, Index("sha3-256"))
	require.Equal(t, -1, Index("SHA256"))
}

func TestCode(t *testing.T) {
	code, err := Code(SHA256)
	require.NoError(t, err)
	require.Equal(t, multicodec.Sha2_256, code)

	code, err = Code(BLAKE2B)
	require.NoError(t, err)
	require.Equal(t, multicodec.Code(0xb240), code)

	_, err = Code("crc32")
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestSum(t *testing.T) {
	t.Run("sizes", func(t *testing.T) {
		digests, err := Sum([]byte("hello world"))
		require.NoError(t, err)
		require.Len(t, digests, Count)

		for _, algo := range Algorithms {
			size, err := Size(algo)
			require.NoError(t, err)
			require.Len(t, digests[algo], size, algo)
		}
	})

	t.Run("known vectors", func(t *testing.T) {
		digests, err := Sum(nil)
		require.NoError(t, err)
		require.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", hex.EncodeToString(digests[MD5]))
		require.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", hex.EncodeToString(digests[SHA1]))
		require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hex.EncodeToString(digests[SHA256]))
		require.Equal(t, "38b060a751ac96384cd9327eb1b1e36a21fdb71114be07434c0cc7bf63f6e1da274edebfe76f65fbd51ad2f14898b95b", hex.EncodeToString(digests[SHA384]))
		require.Equal(t, "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e", hex.EncodeToString(digests[SHA512]))
		require.Equal(t, "69217a3079908094e11121d042354a7c1f55b6482ca1a51e1b250dfd1ed0eef9", hex.EncodeToString(digests[BLAKE2S]))
		require.Equal(t, "786a02f742015903c6c6fd852552d272912f4740e15847618a86e217f71f5419d25e1031afee585313896444934eb04b903a685b1448b755d56f701afe9be2ce", hex.EncodeToString(digests[BLAKE2B]))
	})

	t.Run("known vectors abc", func(t *testing.T) {
		digests, err := Sum([]byte("abc"))
		require.NoError(t, err)
		require.Equal(t, "508c5e8c327c14e2e1a72ba34eeb452f37458b209ed63a294d999b4c86675982", hex.EncodeToString(digests[BLAKE2S]))
		require.Equal(t, "ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d17d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923", hex.EncodeToString(digests[BLAKE2B]))
	})

	t.Run("matches multihash", func(t *testing.T) {
		data := []byte("the quick brown fox")
		digests, err := Sum(data)
		require.NoError(t, err)

		for i, algo := range Algorithms {
			mh, err := multihash.Sum(data, uint64(codes[i]), -1)
			require.NoError(t, err)
			dmh, err := multihash.Decode(mh)
			require.NoError(t, err)
			require.Equal(t, dmh.Digest, digests[algo], algo)
		}
	})
}

func TestHasherStreaming(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 1000)

	h, err := NewHasher()
	require.NoError(t, err)
	for off := 0; off < len(data); off += 333 {
		end := min(off+333, len(data))
		n, err := h.Write(data[off:end])
		require.NoError(t, err)
		require.Equal(t, end-off, n)
	}

	want, err := Sum(data)
	require.NoError(t, err)
	require.Equal(t, want, h.Digests())
}

func TestParse(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, 32)

	t.Run("hex", func(t *testing.T) {
		b, err := Parse(hex.EncodeToString(raw))
		require.NoError(t, err)
		require.Equal(t, raw, b)
	})

	t.Run("multibase", func(t *testing.T) {
		s, err := multibase.Encode(multibase.Base64url, raw)
		require.NoError(t, err)
		b, err := Parse(s)
		require.NoError(t, err)
		require.Equal(t, raw, b)
	})

	t.Run("hex takes precedence", func(t *testing.T) {
		b, err := Parse("bafe")
		require.NoError(t, err)
		require.Equal(t, []byte{0xba, 0xfe}, b)
	})

	t.Run("prefixed base16", func(t *testing.T) {
		b, err := Parse("f" + hex.EncodeToString(raw[:3]))
		require.NoError(t, err)
		require.Equal(t, raw[:3], b)
	})

	t.Run("empty", func(t *testing.T) {
		b, err := Parse("")
		require.NoError(t, err)
		require.Nil(t, b)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := Parse("!not a digest")
		require.ErrorIs(t, err, ErrInvalidDigest)
	})
}

func TestLink(t *testing.T) {
	d, err := hex.DecodeString("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	require.NoError(t, err)

	tests := []struct {
		kind LinkKind
		want string
	}{
		{HashURI, "hash://sha256/e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{NamedInfo, "ni:///sha-256;47DEQpj8HBSa-_TImW-5JCeuQeRkm5NMpJWZG3hSuFU"},
		{Prefix, "hash://sha256/e3b0c44298fc1c14"},
		{SSB, "&47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=.sha256"},
		{Magnet, "magnet:?xt=urn:sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s, err := Link(tt.kind, SHA256, d)
			require.NoError(t, err)
			require.Equal(t, tt.want, s)
		})
	}

	t.Run(MultihashLink.String(), func(t *testing.T) {
		s, err := Link(MultihashLink, SHA256, d)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(s, "z"), s)
		enc, mh, err := multibase.Decode(s)
		require.NoError(t, err)
		require.Equal(t, multibase.Base58BTC, enc)
		want, err := Multihash(SHA256, d)
		require.NoError(t, err)
		require.Equal(t, []byte(want), mh)
		dmh, err := multihash.Decode(mh)
		require.NoError(t, err)
		require.Equal(t, uint64(multihash.SHA2_256), dmh.Code)
		require.Equal(t, d, dmh.Digest)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := Link(HashURI, "whirlpool", d)
		require.ErrorIs(t, err, ErrUnknownAlgorithm)
	})

	t.Run("empty digest", func(t *testing.T) {
		_, err := Link(HashURI, SHA256, nil)
		require.ErrorIs(t, err, ErrInvalidDigest)
	})
}

func TestParseLinkKind(t *testing.T) {
	for _, k := range LinkKinds {
		got, err := ParseLinkKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}
	_, err := ParseLinkKind("gopher")
	require.Error(t, err)
}
