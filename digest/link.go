package digest

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/multiformats/go-multibase"
)

// LinkKind selects the textual form of a hash link.
type LinkKind int

const (
	// HashURI is hash://<algo>/<hex>.
	HashURI LinkKind = iota + 1
	// NamedInfo is an RFC 6920 ni:///<algo>;<base64url> URI.
	NamedInfo
	// MultihashLink is a multihash in base58btc multibase form (z...).
	MultihashLink
	// Prefix is a hash URI truncated to the first 8 bytes of the digest.
	Prefix
	// SSB is a Secure Scuttlebutt blob reference &<base64>.<algo>.
	SSB
	// Magnet is magnet:?xt=urn:<algo>:<hex>.
	Magnet
)

// prefixBytes is the digest length kept by [Prefix] links.
const prefixBytes = 8

var linkKindNames = map[LinkKind]string{
	HashURI:       "hash-uri",
	NamedInfo:     "named-info",
	MultihashLink: "multihash",
	Prefix:        "prefix",
	SSB:           "ssb",
	Magnet:        "magnet",
}

// LinkKinds lists every link kind in display order.
var LinkKinds = []LinkKind{HashURI, NamedInfo, MultihashLink, Prefix, SSB, Magnet}

func (k LinkKind) String() string {
	if n, ok := linkKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("LinkKind(%d)", int(k))
}

// ParseLinkKind returns the link kind with the given name.
func ParseLinkKind(s string) (LinkKind, error) {
	for k, n := range linkKindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown link kind: %q", s)
}

// RFC 6920 names, where they differ from ours.
var namedInfoAlgorithms = map[string]string{
	SHA1:   "sha-1",
	SHA256: "sha-256",
	SHA384: "sha-384",
	SHA512: "sha-512",
}

// Link formats a digest as a hash link of the given kind.
func Link(kind LinkKind, algo string, d []byte) (string, error) {
	if Index(algo) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}
	if len(d) == 0 {
		return "", fmt.Errorf("%w: empty %s digest", ErrInvalidDigest, algo)
	}
	switch kind {
	case HashURI:
		return fmt.Sprintf("hash://%s/%s", algo, hex.EncodeToString(d)), nil
	case NamedInfo:
		name, ok := namedInfoAlgorithms[algo]
		if !ok {
			name = algo
		}
		return fmt.Sprintf("ni:///%s;%s", name, base64.RawURLEncoding.EncodeToString(d)), nil
	case MultihashLink:
		mh, err := Multihash(algo, d)
		if err != nil {
			return "", err
		}
		return multibase.Encode(multibase.Base58BTC, mh)
	case Prefix:
		if len(d) > prefixBytes {
			d = d[:prefixBytes]
		}
		return fmt.Sprintf("hash://%s/%s", algo, hex.EncodeToString(d)), nil
	case SSB:
		return fmt.Sprintf("&%s.%s", base64.StdEncoding.EncodeToString(d), algo), nil
	case Magnet:
		return fmt.Sprintf("magnet:?xt=urn:%s:%s", algo, hex.EncodeToString(d)), nil
	default:
		return "", fmt.Errorf("unknown link kind: %d", int(kind))
	}
}
