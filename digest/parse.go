package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/multiformats/go-multibase"
)

// Parse decodes a textual digest. The empty string parses to a nil digest.
//
// Plain hex, the archive's own digest form, takes precedence: any string of
// even length made only of hex digits is decoded as hex, even when it is also
// a valid multibase string (a "b" base32 or "9" base10 string, say). Other
// strings are decoded as multibase, so hex that must go through multibase
// needs the "f" prefix and an odd total length.
func Parse(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if len(s)%2 == 0 {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	_, b, err := multibase.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is neither hex nor multibase: %w", ErrInvalidDigest, s, err)
	}
	return b, nil
}
